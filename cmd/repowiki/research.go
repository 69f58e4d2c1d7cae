// cmd/repowiki/research.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julianshen/repowiki/internal/research"
)

func researchCmd() *cobra.Command {
	var (
		repoFlag   string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "research <topic>",
		Short: "Run a multi-turn deep research investigation",
		Long: `Investigate a topic against a repository over multiple LLM turns,
printing the research plan, updates, and final conclusion.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if repoFlag == "" {
				return fmt.Errorf("--repo is required")
			}
			ref, err := parseRepoArg(repoFlag, cfg)
			if err != nil {
				return err
			}

			conductor := research.NewConductor(buildExchanger(cfg), research.Options{
				Provider: cfg.Provider.Name,
				Model:    cfg.Provider.Model,
				Language: cfg.Generator.Language,
			}, cfg.Research.MaxIterations, cfg.Research.ContinueDelay.Std())

			topic := strings.Join(args, " ")
			result, err := conductor.Run(cmd.Context(), ref, topic)
			if err != nil {
				return err
			}

			var doc strings.Builder
			for _, stage := range result.Stages {
				doc.WriteString(stage.Content)
				doc.WriteString("\n\n")
			}

			if outputFlag != "" {
				if err := os.WriteFile(outputFlag, []byte(doc.String()), 0o644); err != nil {
					return fmt.Errorf("writing research output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Research complete after %d iterations: %s\n", result.Iterations, outputFlag)
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), doc.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&repoFlag, "repo", "", "repository to investigate (owner/repo, URL, or path)")
	cmd.Flags().StringVar(&outputFlag, "output", "", "write the research document to this file")

	return cmd
}
