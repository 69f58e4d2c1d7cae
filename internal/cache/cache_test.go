package cache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/repowiki/internal/wiki"
)

func sampleEnvelope() *Envelope {
	return &Envelope{
		Repo:          RepoInfo{Owner: "octocat", Repo: "hello-world", Type: "github"},
		Language:      "en",
		Comprehensive: true,
		WikiStructure: wiki.Structure{
			ID:    "wiki-1",
			Title: "Hello World Wiki",
			Pages: []wiki.Page{{ID: "page-1", Title: "Overview", Importance: wiki.ImportanceHigh}},
		},
		GeneratedPages: map[string]wiki.Page{
			"page-1": {ID: "page-1", Title: "Overview", Content: "# Overview\n\nHello."},
		},
		Provider:    "google",
		Model:       "gemini-2.5-flash",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		CommitSHA:   "abc123",
	}
}

func TestEnvelopeKey(t *testing.T) {
	env := sampleEnvelope()
	key := env.Key()
	assert.Equal(t, "octocat", key.Owner)
	assert.Equal(t, "hello-world", key.Repo)
	assert.Equal(t, "github", key.RepoType)
	assert.Equal(t, "en", key.Language)
	assert.True(t, key.Comprehensive)
}

func TestRemoteStoreGetMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	store := NewRemoteStore(server.URL, "")
	env, err := store.Get(context.Background(), Key{Owner: "octocat", Repo: "missing", RepoType: "github", Language: "en"})
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestRemoteStoreGetNullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
	}))
	defer server.Close()

	store := NewRemoteStore(server.URL, "")
	env, err := store.Get(context.Background(), Key{Owner: "octocat", Repo: "hello-world", RepoType: "github", Language: "en"})
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestRemoteStoreRoundTrip(t *testing.T) {
	var saved *Envelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var env Envelope
			require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
			saved = &env
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			assert.Equal(t, "octocat", r.URL.Query().Get("owner"))
			assert.Equal(t, "true", r.URL.Query().Get("comprehensive"))
			if saved == nil {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(saved)
		}
	}))
	defer server.Close()

	store := NewRemoteStore(server.URL, "")
	require.NoError(t, store.Put(context.Background(), sampleEnvelope()))

	env, err := store.Get(context.Background(), sampleEnvelope().Key())
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "Hello World Wiki", env.WikiStructure.Title)
	assert.Equal(t, "abc123", env.CommitSHA)
	assert.Contains(t, env.GeneratedPages, "page-1")
}

func TestRemoteStoreDeleteForwardsAuthCode(t *testing.T) {
	var gotCode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotCode = r.URL.Query().Get("authorization_code")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := NewRemoteStore(server.URL, "s3cret")
	require.NoError(t, store.Delete(context.Background(), sampleEnvelope().Key()))
	assert.Equal(t, "s3cret", gotCode)
}

func TestRemoteStoreListProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/processed_projects", r.URL.Path)
		json.NewEncoder(w).Encode([]ProjectEntry{
			{Owner: "octocat", Repo: "hello-world", RepoType: "github", Language: "en", Comprehensive: true},
		})
	}))
	defer server.Close()

	store := NewRemoteStore(server.URL, "")
	entries, err := store.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello-world", entries[0].Repo)
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	key := sampleEnvelope().Key()

	env, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, env)

	require.NoError(t, store.Put(ctx, sampleEnvelope()))

	env, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "Hello World Wiki", env.WikiStructure.Title)
	assert.Equal(t, "# Overview\n\nHello.", env.GeneratedPages["page-1"].Content)

	entries, err := store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "octocat", entries[0].Owner)

	require.NoError(t, store.Delete(ctx, key))
	env, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestLocalStorePutReplaces(t *testing.T) {
	store, err := NewLocalStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first := sampleEnvelope()
	require.NoError(t, store.Put(ctx, first))

	second := sampleEnvelope()
	second.CommitSHA = "def456"
	require.NoError(t, store.Put(ctx, second))

	env, err := store.Get(ctx, first.Key())
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "def456", env.CommitSHA)

	entries, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
