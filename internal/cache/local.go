package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// LocalStore keeps cached wikis in a SQLite database. It serves the
// same contract as RemoteStore for offline and local-repository use.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore opens (or creates) a SQLite database at dbPath and
// ensures the cache table exists. Use ":memory:" for an in-memory
// database.
func NewLocalStore(dbPath string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := createCacheTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &LocalStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func createCacheTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS wiki_cache (
			owner TEXT NOT NULL,
			repo TEXT NOT NULL,
			repo_type TEXT NOT NULL,
			language TEXT NOT NULL,
			comprehensive INTEGER NOT NULL,
			payload TEXT NOT NULL,
			generated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (owner, repo, repo_type, language, comprehensive)
		)
	`)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Get returns the cached wiki for key, or (nil, nil) when absent.
func (s *LocalStore) Get(ctx context.Context, key Key) (*Envelope, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM wiki_cache
		WHERE owner = ? AND repo = ? AND repo_type = ? AND language = ? AND comprehensive = ?
	`, key.Owner, key.Repo, key.RepoType, key.Language, boolInt(key.Comprehensive)).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query wiki cache: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("decoding cache envelope: %w", err)
	}
	return &env, nil
}

// Put stores env, replacing any previous entry under the same key.
func (s *LocalStore) Put(ctx context.Context, env *Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding cache envelope: %w", err)
	}
	generatedAt := env.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	key := env.Key()
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO wiki_cache (owner, repo, repo_type, language, comprehensive, payload, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key.Owner, key.Repo, key.RepoType, key.Language, boolInt(key.Comprehensive), string(payload), generatedAt)
	if err != nil {
		return fmt.Errorf("save wiki cache: %w", err)
	}
	return nil
}

// Delete removes the cached wiki for key. Deleting a missing entry is
// not an error.
func (s *LocalStore) Delete(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM wiki_cache
		WHERE owner = ? AND repo = ? AND repo_type = ? AND language = ? AND comprehensive = ?
	`, key.Owner, key.Repo, key.RepoType, key.Language, boolInt(key.Comprehensive))
	if err != nil {
		return fmt.Errorf("delete wiki cache: %w", err)
	}
	return nil
}

// ListProjects returns all cached wikis, most recently generated first.
func (s *LocalStore) ListProjects(ctx context.Context) ([]ProjectEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, repo, repo_type, language, comprehensive, generated_at
		FROM wiki_cache
		ORDER BY generated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query cached projects: %w", err)
	}
	defer rows.Close()

	var entries []ProjectEntry
	for rows.Next() {
		var e ProjectEntry
		var comprehensive int
		if err := rows.Scan(&e.Owner, &e.Repo, &e.RepoType, &e.Language, &comprehensive, &e.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan project entry: %w", err)
		}
		e.Comprehensive = comprehensive != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
