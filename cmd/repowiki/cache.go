// cmd/repowiki/cache.go
package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/julianshen/repowiki/internal/cache"
	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/wiki"
)

func projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List cached wikis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeStore, err := buildStore(cfg, repo.Ref{})
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := store.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cached wikis.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REPOSITORY\tTYPE\tLANGUAGE\tVIEW\tGENERATED")
			for _, e := range entries {
				view := "concise"
				if e.Comprehensive {
					view = "comprehensive"
				}
				fmt.Fprintf(w, "%s/%s\t%s\t%s\t%s\t%s\n",
					e.Owner, e.Repo, e.RepoType, e.Language, view,
					e.GeneratedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func clearCmd() *cobra.Command {
	var authFlag string

	cmd := &cobra.Command{
		Use:   "clear <repo>",
		Short: "Delete the cached wiki for a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Auth.CheckAuthCode(authFlag); err != nil {
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

			key := cache.Key{
				Owner:         ref.Owner,
				Repo:          ref.Repo,
				RepoType:      ref.Type,
				Language:      cfg.Generator.Language,
				Comprehensive: cfg.Generator.Comprehensive,
			}
			if err := store.Delete(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached wiki for %s\n", ref)
			return nil
		},
	}

	cmd.Flags().StringVar(&authFlag, "auth-code", "", "authorization code")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		outputFlag string
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "export <repo>",
		Short: "Export an already-cached wiki",
		Long:  `Export the cached wiki for a repository as markdown or JSON without regenerating anything.`,
		Args:  cobra.ExactArgs(1),
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

			env, err := store.Get(cmd.Context(), cache.Key{
				Owner:         ref.Owner,
				Repo:          ref.Repo,
				RepoType:      ref.Type,
				Language:      cfg.Generator.Language,
				Comprehensive: cfg.Generator.Comprehensive,
			})
			if err != nil {
				return err
			}
			if env == nil {
				return fmt.Errorf("no cached wiki for %s; run generate first", ref)
			}

			st := env.WikiStructure
			for i := range st.Pages {
				if cached, ok := env.GeneratedPages[st.Pages[i].ID]; ok {
					st.Pages[i].Content = cached.Content
				}
			}

			generatedAt := env.GeneratedAt
			if generatedAt.IsZero() {
				generatedAt = time.Now()
			}

			if outputFlag != "" {
				return writeExport(outputFlag, formatFlag, ref, &st)
			}
			if formatFlag == "json" {
				data, err := wiki.ExportJSON(ref, &st, generatedAt)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), wiki.ExportMarkdown(ref, &st, generatedAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFlag, "output", "", "write the export to this file")
	cmd.Flags().StringVar(&formatFlag, "format", "markdown", "export format: markdown, json")

	return cmd
}
