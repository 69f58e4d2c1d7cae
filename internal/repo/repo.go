// Package repo defines the repository collaborators the orchestrator
// consumes: file listing, commit lookup, and source URL helpers, with
// GitHub, GitLab, and local-filesystem implementations.
package repo

import (
	"context"
	"fmt"
)

// Repository types.
const (
	TypeGitHub    = "github"
	TypeGitLab    = "gitlab"
	TypeBitbucket = "bitbucket"
	TypeLocal     = "local"
)

// Ref identifies a repository.
type Ref struct {
	Owner     string
	Repo      string
	Type      string // github, gitlab, bitbucket, local
	URL       string // full web URL; derived from Type when empty
	Token     string // access token for private repos
	LocalPath string // filesystem path for local repos
}

// String returns "owner/repo".
func (r Ref) String() string {
	return r.Owner + "/" + r.Repo
}

// IsLocal reports whether the repository lives on the local filesystem.
func (r Ref) IsLocal() bool {
	return r.Type == TypeLocal
}

// WebURL returns the browsable repository URL, deriving the host from
// the repository type when no explicit URL is set.
func (r Ref) WebURL() string {
	if r.URL != "" {
		return r.URL
	}
	host := "https://github.com"
	switch r.Type {
	case TypeGitLab:
		host = "https://gitlab.com"
	case TypeBitbucket:
		host = "https://bitbucket.org"
	}
	return fmt.Sprintf("%s/%s/%s", host, r.Owner, r.Repo)
}

// Listing is the uniform shape every listing provider returns.
type Listing struct {
	FilePaths     []string
	Readme        string
	DefaultBranch string
}

// FileTree returns the file paths joined as the newline-separated tree
// text embedded in the planning prompt.
func (l Listing) FileTree() string {
	tree := ""
	for i, p := range l.FilePaths {
		if i > 0 {
			tree += "\n"
		}
		tree += p
	}
	return tree
}

// Lister returns the flat file list and README for a repository.
type Lister interface {
	List(ctx context.Context, ref Ref) (Listing, error)
}

// CommitLookup returns the latest commit identifier for a repository,
// used for cache-save tagging and freshness checks.
type CommitLookup interface {
	LatestCommit(ctx context.Context, ref Ref) (string, error)
}

// FileURL resolves a repository file path to a browsable source URL for
// embedding in page prompts. Local repos get the bare path back.
func FileURL(ref Ref, branch, path string) string {
	if branch == "" {
		branch = "main"
	}
	base := ref.WebURL()
	switch ref.Type {
	case TypeGitHub:
		return fmt.Sprintf("%s/blob/%s/%s", base, branch, path)
	case TypeGitLab:
		return fmt.Sprintf("%s/-/blob/%s/%s", base, branch, path)
	case TypeBitbucket:
		return fmt.Sprintf("%s/src/%s/%s", base, branch, path)
	default:
		return path
	}
}
