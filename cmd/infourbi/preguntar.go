package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/infra"
)

var preguntarCmd = &cobra.Command{
	Use:   "preguntar <prompt>",
	Short: "Ask the Gemini assistant (needs GENAI_API_KEY)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		gen, err := infra.NewGemini(cmd.Context(), cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			return err
		}
		return preguntar(cmd, infra.NewAsistente(gen, nil), strings.Join(args, " "))
	},
}

func preguntar(cmd *cobra.Command, a *infra.Asistente, prompt string) error {
	r, err := a.Preguntar(cmd.Context(), prompt)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), r)
	return nil
}
