// Command infourbi is the admin CLI: it seeds users and locations against
// the configured store and talks to the assistant.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/store"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "infourbi",
	Short: "Admin tools for the infourbi backend",
	Long: `Admin tools for the infourbi backend.

Commands that touch data use the same environment as the server
(STORE_DRIVER, DATABASE_URL, MONGO_URI, FIREBASE_*).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(hashCmd, usuarioCmd, sembrarCmd, preguntarCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend loads the config and opens the configured store. The caller
// closes the backend.
func openBackend(ctx context.Context) (*config.Config, store.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	var fb *infra.Firebase
	if cfg.UsesFirebase() {
		if fb, err = infra.NewFirebase(ctx, cfg); err != nil {
			return nil, nil, err
		}
	}
	backend, err := infra.NewBackend(ctx, cfg, fb)
	if err != nil {
		return nil, nil, err
	}
	return cfg, backend, nil
}
