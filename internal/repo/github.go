package repo

import (
	"context"
	"fmt"
	"log"

	gogithub "github.com/google/go-github/v68/github"
)

// GitHubCommits looks up the latest commit on a GitHub repository.
type GitHubCommits struct {
	client *gogithub.Client
}

// NewGitHubCommits builds a lookup using the given token; an empty token
// yields an unauthenticated client subject to stricter rate limits.
func NewGitHubCommits(token string) *GitHubCommits {
	client := gogithub.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubCommits{client: client}
}

// NewGitHubCommitsClient wraps an existing client, used by tests to
// point at a stub server.
func NewGitHubCommitsClient(client *gogithub.Client) *GitHubCommits {
	return &GitHubCommits{client: client}
}

// GitHubLister lists a GitHub repository's file tree and README
// through the REST API.
type GitHubLister struct {
	client *gogithub.Client
}

// NewGitHubLister builds a lister using the given token; an empty token
// yields an unauthenticated client subject to stricter rate limits.
func NewGitHubLister(token string) *GitHubLister {
	client := gogithub.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubLister{client: client}
}

// NewGitHubListerClient wraps an existing client, used by tests to
// point at a stub server.
func NewGitHubListerClient(client *gogithub.Client) *GitHubLister {
	return &GitHubLister{client: client}
}

// List implements Lister via one recursive tree call on the default
// branch. The README is best-effort; a repository without one still
// lists fine.
func (g *GitHubLister) List(ctx context.Context, ref Ref) (Listing, error) {
	repository, _, err := g.client.Repositories.Get(ctx, ref.Owner, ref.Repo)
	if err != nil {
		return Listing{}, fmt.Errorf("fetching repository %s: %w", ref, err)
	}
	branch := repository.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	tree, _, err := g.client.Git.GetTree(ctx, ref.Owner, ref.Repo, branch, true)
	if err != nil {
		return Listing{}, fmt.Errorf("fetching file tree for %s: %w", ref, err)
	}
	if tree.GetTruncated() {
		log.Printf("WARNING: file tree for %s was truncated by the API", ref)
	}

	listing := Listing{DefaultBranch: branch}
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			listing.FilePaths = append(listing.FilePaths, entry.GetPath())
		}
	}

	readme, _, err := g.client.Repositories.GetReadme(ctx, ref.Owner, ref.Repo, nil)
	if err == nil {
		if content, cerr := readme.GetContent(); cerr == nil {
			listing.Readme = content
		}
	} else {
		log.Printf("WARNING: no readme for %s: %v", ref, err)
	}

	return listing, nil
}

// LatestCommit implements CommitLookup.
func (g *GitHubCommits) LatestCommit(ctx context.Context, ref Ref) (string, error) {
	commits, _, err := g.client.Repositories.ListCommits(ctx, ref.Owner, ref.Repo, &gogithub.CommitsListOptions{
		ListOptions: gogithub.ListOptions{PerPage: 1},
	})
	if err != nil {
		return "", fmt.Errorf("listing commits for %s: %w", ref, err)
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("no commits found for %s", ref)
	}
	return commits[0].GetSHA(), nil
}
