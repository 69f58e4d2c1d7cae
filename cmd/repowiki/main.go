// cmd/repowiki/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julianshen/repowiki/internal/cache"
	"github.com/julianshen/repowiki/internal/config"
	"github.com/julianshen/repowiki/internal/repo"
	"github.com/julianshen/repowiki/internal/transport"
	"github.com/julianshen/repowiki/internal/wiki"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath        string
	providerFlag      string
	modelFlag         string
	languageFlag      string
	comprehensiveFlag bool
	repoTypeFlag      string
	tokenFlag         string
)

func versionString() string {
	return fmt.Sprintf("repowiki %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "repowiki",
		Short: "Generate wiki documentation for a repository",
		Long: `repowiki — generate an LLM-powered documentation wiki for a GitHub,
GitLab, or local repository, with caching and deep research.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "override provider name")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override model name")
	rootCmd.PersistentFlags().StringVar(&languageFlag, "language", "", "wiki language (e.g. en, ja)")
	rootCmd.PersistentFlags().BoolVar(&comprehensiveFlag, "comprehensive", false, "comprehensive view (sections and 8-12 pages)")
	rootCmd.PersistentFlags().StringVar(&repoTypeFlag, "type", "", "repository type: github, gitlab, bitbucket, local")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "access token for private repositories")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(regenerateCmd())
	rootCmd.AddCommand(researchCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(clearCmd())

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".repowiki", "config.toml")
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if providerFlag != "" {
		cfg.Provider.Name = providerFlag
	}
	if modelFlag != "" {
		cfg.Provider.Model = modelFlag
	}
	if languageFlag != "" {
		cfg.Generator.Language = languageFlag
	}
	if comprehensiveFlag {
		cfg.Generator.Comprehensive = true
	}
	if tokenFlag != "" {
		cfg.Backend.Token = tokenFlag
	}
	return cfg, nil
}

// parseRepoArg resolves a command-line repository argument: an existing
// directory, a full repository URL, or an "owner/repo" shorthand typed
// by --type (github when unset).
func parseRepoArg(arg string, cfg *config.Config) (repo.Ref, error) {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return repo.Ref{}, fmt.Errorf("resolving path %q: %w", arg, err)
		}
		return repo.Ref{
			Owner:     "local",
			Repo:      filepath.Base(abs),
			Type:      repo.TypeLocal,
			LocalPath: abs,
		}, nil
	}

	if strings.Contains(arg, "://") {
		u, err := url.Parse(arg)
		if err != nil {
			return repo.Ref{}, fmt.Errorf("parsing repository URL %q: %w", arg, err)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 {
			return repo.Ref{}, fmt.Errorf("repository URL %q has no owner/repo path", arg)
		}
		repoType := repoTypeFlag
		if repoType == "" {
			switch {
			case strings.Contains(u.Host, "gitlab"):
				repoType = repo.TypeGitLab
			case strings.Contains(u.Host, "bitbucket"):
				repoType = repo.TypeBitbucket
			default:
				repoType = repo.TypeGitHub
			}
		}
		return repo.Ref{
			Owner: parts[0],
			Repo:  strings.TrimSuffix(strings.Join(parts[1:], "/"), ".git"),
			Type:  repoType,
			URL:   arg,
			Token: resolveToken(cfg, repoType),
		}, nil
	}

	parts := strings.Split(arg, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return repo.Ref{}, fmt.Errorf("invalid repository %q: want owner/repo, a URL, or a directory", arg)
	}
	repoType := repoTypeFlag
	if repoType == "" {
		repoType = repo.TypeGitHub
	}
	return repo.Ref{
		Owner: parts[0],
		Repo:  parts[1],
		Type:  repoType,
		Token: resolveToken(cfg, repoType),
	}, nil
}

// resolveToken picks the access token for a hosted repository: the --token
// flag or config value wins, otherwise the host's conventional environment
// variable (GITHUB_TOKEN, GITLAB_TOKEN) is consulted.
func resolveToken(cfg *config.Config, repoType string) string {
	if cfg.Backend.Token != "" {
		return cfg.Backend.Token
	}
	envVar := config.RepoTokenEnvVar(repoType)
	if envVar == "" {
		return ""
	}
	token, err := config.ResolveAPIKey("env", "", envVar)
	if err != nil {
		return ""
	}
	return token
}

// buildExchanger wires the websocket-primary, HTTP-fallback transport
// with the configured client-side rate limit.
func buildExchanger(cfg *config.Config) transport.Exchanger {
	httpURL := strings.TrimRight(cfg.Backend.BaseURL, "/") + "/chat/completions/stream"
	ex := transport.NewFallbackExchanger(cfg.Backend.WSURL, httpURL)
	return transport.NewLimitedExchanger(ex, cfg.Generator.RequestsPerHour)
}

// buildStore selects the configured cache backend. The local sqlite
// backend is the default for local repositories.
func buildStore(cfg *config.Config, ref repo.Ref) (cache.Store, func(), error) {
	backend := cfg.Cache.Backend
	if ref.IsLocal() {
		backend = "local"
	}
	switch backend {
	case "local":
		path := cfg.Cache.Path
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, fmt.Errorf("resolving cache path: %w", err)
			}
			path = filepath.Join(home, ".repowiki", "cache.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating cache directory: %w", err)
		}
		store, err := cache.NewLocalStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "remote", "":
		return cache.NewRemoteStore(cfg.Cache.BaseURL, cfg.Auth.Code), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// buildLister selects the listing provider for the repository type.
func buildLister(ref repo.Ref) (repo.Lister, error) {
	switch ref.Type {
	case repo.TypeLocal:
		return repo.LocalLister{}, nil
	case repo.TypeGitHub:
		return repo.NewGitHubLister(ref.Token), nil
	case repo.TypeGitLab:
		return repo.NewGitLabLister(ref.Token, "")
	default:
		return nil, fmt.Errorf("no listing provider for repository type %q", ref.Type)
	}
}

// buildCommits selects the commit lookup for freshness checks; nil for
// types without one.
func buildCommits(ref repo.Ref) repo.CommitLookup {
	switch ref.Type {
	case repo.TypeGitHub:
		return repo.NewGitHubCommits(ref.Token)
	case repo.TypeGitLab:
		lookup, err := repo.NewGitLabCommits(ref.Token, "")
		if err != nil {
			return nil
		}
		return lookup
	default:
		return nil
	}
}

func resolverOptions(cfg *config.Config) wiki.ResolverOptions {
	return wiki.ResolverOptions{
		Provider:      cfg.Provider.Name,
		Model:         cfg.Provider.Model,
		Language:      cfg.Generator.Language,
		Comprehensive: cfg.Generator.Comprehensive,
	}
}
