// cmd/repowiki/generate.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/julianshen/repowiki/internal/generator"
	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/wiki"
)

func generateCmd() *cobra.Command {
	var (
		outputFlag  string
		formatFlag  string
		refreshFlag bool
		authFlag    string
	)

	cmd := &cobra.Command{
		Use:   "generate <repo>",
		Short: "Generate (or load) the wiki for a repository",
		Long: `Generate the documentation wiki for a repository. A cached wiki is
served as-is; pass --refresh to discard it and regenerate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ref, err := parseRepoArg(args[0], cfg)
			if err != nil {
				return err
			}

			store, closeStore, err := buildStore(cfg, ref)
			if err != nil {
				return err
			}
			defer closeStore()

			lister, err := buildLister(ref)
			if err != nil {
				return err
			}

			var remote *wiki.RemoteParser
			if cfg.Generator.RemoteParserURL != "" {
				remote = wiki.NewRemoteParser(cfg.Generator.RemoteParserURL)
			}

			orch := generator.NewOrchestrator(ref, generator.Options{
				Exchanger: buildExchanger(cfg),
				Lister:    lister,
				Commits:   buildCommits(ref),
				Store:     store,
				Remote:    remote,
				Auth:      cfg.Auth,
				Resolver:  resolverOptions(cfg),
				Limit:     cfg.Generator.MaxConcurrent,
			})

			ctx := cmd.Context()
			if refreshFlag {
				err = orch.Refresh(ctx, authFlag)
			} else {
				err = orch.Open(ctx)
			}
			if err != nil {
				return err
			}

			st := orch.Structure()
			fmt.Fprintf(cmd.OutOrStdout(), "Wiki %q: %d pages (%s)\n", st.Title, len(st.Pages), orch.Freshness())
			for pageID, pageErr := range orch.PageErrors() {
				fmt.Fprintf(cmd.ErrOrStderr(), "page %s failed: %v\n", pageID, pageErr)
			}

			if outputFlag == "" {
				return nil
			}
			return writeExport(outputFlag, formatFlag, ref, st)
		},
	}

	cmd.Flags().StringVar(&outputFlag, "output", "", "write the exported wiki to this file")
	cmd.Flags().StringVar(&formatFlag, "format", "markdown", "export format: markdown, json")
	cmd.Flags().BoolVar(&refreshFlag, "refresh", false, "discard the cached wiki and regenerate")
	cmd.Flags().StringVar(&authFlag, "auth-code", "", "authorization code for --refresh")

	return cmd
}

// writeExport renders the structure in the requested format to path.
func writeExport(path, format string, ref repo.Ref, st *wiki.Structure) error {
	var data []byte
	switch format {
	case "markdown", "md":
		data = []byte(wiki.ExportMarkdown(ref, st, time.Now()))
	case "json":
		var err error
		data, err = wiki.ExportJSON(ref, st, time.Now())
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
