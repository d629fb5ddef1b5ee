package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/worker"
)

var dlqLimite int

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and retry jobs that ran out of attempts",
}

var dlqListarCmd = &cobra.Command{
	Use:   "listar",
	Short: "List the most recent dead jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := abrirRedis(cmd)
		if err != nil {
			return err
		}
		defer rdb.Close()

		entries, err := worker.NewDeadLetters(rdb).Entries(cmd.Context(), worker.QueueEmail, int64(dlqLimite))
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FECHA\tTIPO\tINTENTOS\tMOTIVO")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.FailedAt.Local().Format(time.DateTime), e.JobType, e.Attempts, e.Reason)
		}
		return tw.Flush()
	},
}

var dlqReintentarCmd = &cobra.Command{
	Use:   "reintentar",
	Short: "Move dead jobs back to their queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := abrirRedis(cmd)
		if err != nil {
			return err
		}
		defer rdb.Close()

		n, err := worker.NewDeadLetters(rdb).Retry(cmd.Context(), worker.QueueEmail, dlqLimite)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d trabajos reencolados\n", n)
		return nil
	},
}

func init() {
	dlqCmd.PersistentFlags().IntVarP(&dlqLimite, "limite", "n", 20, "maximum number of jobs")
	dlqCmd.AddCommand(dlqListarCmd, dlqReintentarCmd)
	rootCmd.AddCommand(dlqCmd)
}

func abrirRedis(cmd *cobra.Command) (*redis.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL no está configurado")
	}
	return infra.NewRedis(cmd.Context(), cfg.RedisURL)
}
