package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"PortfolioAI/app/chat"
)

func askCmd() *cobra.Command {
	var (
		opts     chat.Options
		semantic bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := cfg.Build()
			if err != nil {
				return err
			}
			defer svc.Close()

			if semantic {
				hybrid := false
				opts.UseHybridSearch = &hybrid
			}
			result := svc.Orchestrator.HandleQuery(cmd.Context(), strings.Join(args, " "), opts)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			switch {
			case result.Success:
				fmt.Fprintln(out, result.Answer)
			case result.Suggestion != "":
				fmt.Fprintf(out, "%s %s\n", result.Error, result.Suggestion)
			default:
				fmt.Fprintln(out, result.Error)
				if result.Details != "" {
					fmt.Fprintf(out, "  details: %s\n", result.Details)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.TopK, "top-k", "k", 0, "number of chunks to retrieve")
	cmd.Flags().StringVarP(&opts.ModelConfig, "preset", "p", "", "model preset: FACTUAL, BALANCED, CREATIVE or CONCISE")
	cmd.Flags().BoolVar(&semantic, "semantic", false, "use plain vector search instead of hybrid reranking")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
