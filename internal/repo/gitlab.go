package repo

import (
	"context"
	"fmt"
	"log"

	gitlab "github.com/xanzy/go-gitlab"
)

// GitLabCommits looks up the latest commit on a GitLab project.
type GitLabCommits struct {
	client *gitlab.Client
}

// NewGitLabCommits builds a lookup against gitlab.com (or baseURL when
// non-empty, for self-hosted instances and tests).
func NewGitLabCommits(token, baseURL string) (*GitLabCommits, error) {
	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &GitLabCommits{client: client}, nil
}

// GitLabLister lists a GitLab project's file tree and README through
// the REST API.
type GitLabLister struct {
	client *gitlab.Client
}

// NewGitLabLister builds a lister against gitlab.com (or baseURL when
// non-empty).
func NewGitLabLister(token, baseURL string) (*GitLabLister, error) {
	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &GitLabLister{client: client}, nil
}

// List implements Lister, paginating the recursive repository tree on
// the project's default branch. The README is best-effort.
func (g *GitLabLister) List(ctx context.Context, ref Ref) (Listing, error) {
	pid := ref.Owner + "/" + ref.Repo

	project, _, err := g.client.Projects.GetProject(pid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return Listing{}, fmt.Errorf("fetching project %s: %w", ref, err)
	}
	branch := project.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	listing := Listing{DefaultBranch: branch}
	opt := &gitlab.ListTreeOptions{
		Recursive:   gitlab.Bool(true),
		Ref:         gitlab.String(branch),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		nodes, resp, err := g.client.Repositories.ListTree(pid, opt, gitlab.WithContext(ctx))
		if err != nil {
			return Listing{}, fmt.Errorf("fetching file tree for %s: %w", ref, err)
		}
		for _, node := range nodes {
			if node.Type == "blob" {
				listing.FilePaths = append(listing.FilePaths, node.Path)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	raw, _, err := g.client.RepositoryFiles.GetRawFile(pid, "README.md", &gitlab.GetRawFileOptions{
		Ref: gitlab.String(branch),
	}, gitlab.WithContext(ctx))
	if err == nil {
		listing.Readme = string(raw)
	} else {
		log.Printf("WARNING: no readme for %s: %v", ref, err)
	}

	return listing, nil
}

// LatestCommit implements CommitLookup.
func (g *GitLabCommits) LatestCommit(ctx context.Context, ref Ref) (string, error) {
	pid := ref.Owner + "/" + ref.Repo
	commits, _, err := g.client.Commits.ListCommits(pid, &gitlab.ListCommitsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 1},
	}, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("listing commits for %s: %w", ref, err)
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("no commits found for %s", ref)
	}
	return commits[0].ID, nil
}
