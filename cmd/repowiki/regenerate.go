// cmd/repowiki/regenerate.go
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julianshen/repowiki/internal/cache"
	"github.com/julianshen/repowiki/internal/wiki"
)

func regenerateCmd() *cobra.Command {
	var pageFlag string

	cmd := &cobra.Command{
		Use:   "regenerate <repo>",
		Short: "Regenerate a single wiki page",
		Long: `Re-render one page of a cached wiki through the backend's synchronous
regeneration endpoint and update the cache entry in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if pageFlag == "" {
				return fmt.Errorf("--page is required")
			}
			if cfg.Generator.RegenerateURL == "" {
				return fmt.Errorf("generator.regenerate_url is not configured")
			}
			ref, err := parseRepoArg(args[0], cfg)
			if err != nil {
				return err
			}

			r := wiki.NewRegenerator(cfg.Generator.RegenerateURL,
				cfg.Provider.Name, cfg.Provider.Model, cfg.Provider.CustomModel)
			page, err := r.Regenerate(cmd.Context(), ref, pageFlag, cfg.Generator.Language)
			if err != nil {
				if errors.Is(err, wiki.ErrRegenerationBusy) {
					return fmt.Errorf("another regeneration is in progress; try again shortly")
				}
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
			env, err := store.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if env != nil {
				patchEnvelopePage(env, *page)
				if err := store.Put(cmd.Context(), env); err != nil {
					return fmt.Errorf("updating cached wiki: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Regenerated page %s (%d bytes)\n", page.ID, len(page.Content))
			return nil
		},
	}

	cmd.Flags().StringVar(&pageFlag, "page", "", "id of the page to regenerate")
	return cmd
}

// patchEnvelopePage replaces one page in a cached envelope. Envelopes
// decoded from a backend that omitted generated_pages arrive with a nil
// map.
func patchEnvelopePage(env *cache.Envelope, page wiki.Page) {
	if env.GeneratedPages == nil {
		env.GeneratedPages = map[string]wiki.Page{}
	}
	env.GeneratedPages[page.ID] = page
}
