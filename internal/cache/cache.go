// Package cache persists completed wikis. The remote HTTP backend is
// the production store; a sqlite backend serves offline and local-repo
// use behind the same interface.
package cache

import (
	"context"
	"time"

	"github.com/julianshen/repowiki/internal/wiki"
)

// Key identifies one cached wiki.
type Key struct {
	Owner         string
	Repo          string
	RepoType      string
	Language      string
	Comprehensive bool
}

// RepoInfo is the repository identity embedded in an envelope.
type RepoInfo struct {
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	Type    string `json:"type"`
	RepoURL string `json:"repoUrl,omitempty"`
}

// Envelope is the unit persisted to and retrieved from the cache.
type Envelope struct {
	Repo           RepoInfo             `json:"repo"`
	Language       string               `json:"language"`
	Comprehensive  bool                 `json:"comprehensive"`
	WikiStructure  wiki.Structure       `json:"wiki_structure"`
	GeneratedPages map[string]wiki.Page `json:"generated_pages"`
	Provider       string               `json:"provider"`
	Model          string               `json:"model"`
	Template       string               `json:"template,omitempty"`
	GeneratedAt    time.Time            `json:"generated_at"`
	CommitSHA      string               `json:"commit_sha,omitempty"`
}

// Key derives the cache key from the envelope's identity fields.
func (e *Envelope) Key() Key {
	return Key{
		Owner:         e.Repo.Owner,
		Repo:          e.Repo.Repo,
		RepoType:      e.Repo.Type,
		Language:      e.Language,
		Comprehensive: e.Comprehensive,
	}
}

// ProjectEntry summarizes one cached wiki for project listings.
type ProjectEntry struct {
	Owner         string    `json:"owner"`
	Repo          string    `json:"repo"`
	RepoType      string    `json:"repo_type"`
	Language      string    `json:"language"`
	Comprehensive bool      `json:"comprehensive"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Store is the wiki cache contract. Get returns (nil, nil) on a miss so
// callers can distinguish absence from I/O failure.
type Store interface {
	Get(ctx context.Context, key Key) (*Envelope, error)
	Put(ctx context.Context, env *Envelope) error
	Delete(ctx context.Context, key Key) error
	ListProjects(ctx context.Context) ([]ProjectEntry, error)
}
