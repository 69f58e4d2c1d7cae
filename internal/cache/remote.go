package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// RemoteStore talks to the wiki cache HTTP API. Transient failures are
// retried with backoff; a 404 (or an explicit null payload) is a miss.
type RemoteStore struct {
	baseURL  string
	authCode string
	client   *retryablehttp.Client
}

// NewRemoteStore builds a store against baseURL. authCode, when
// non-empty, is forwarded on destructive operations.
func NewRemoteStore(baseURL, authCode string) *RemoteStore {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return &RemoteStore{
		baseURL:  strings.TrimRight(baseURL, "/"),
		authCode: authCode,
		client:   client,
	}
}

func (s *RemoteStore) cacheURL(key Key) string {
	q := url.Values{}
	q.Set("owner", key.Owner)
	q.Set("repo", key.Repo)
	q.Set("repo_type", key.RepoType)
	q.Set("language", key.Language)
	q.Set("comprehensive", strconv.FormatBool(key.Comprehensive))
	return s.baseURL + "/api/wiki_cache?" + q.Encode()
}

// Get fetches the cached wiki for key, returning (nil, nil) when the
// server has none.
func (s *RemoteStore) Get(ctx context.Context, key Key) (*Envelope, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.cacheURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("building cache request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching wiki cache: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki cache returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading cache response: %w", err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decoding cache envelope: %w", err)
	}
	return &env, nil
}

// Put stores env, replacing any previous entry under the same key.
func (s *RemoteStore) Put(ctx context.Context, env *Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding cache envelope: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/wiki_cache", payload)
	if err != nil {
		return fmt.Errorf("building cache request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("saving wiki cache: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wiki cache save returned status %d", resp.StatusCode)
	}
	return nil
}

// Delete removes the cached wiki for key. Deleting a missing entry is
// not an error.
func (s *RemoteStore) Delete(ctx context.Context, key Key) error {
	u := s.cacheURL(key)
	if s.authCode != "" {
		u += "&authorization_code=" + url.QueryEscape(s.authCode)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("building cache request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deleting wiki cache: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("wiki cache delete returned status %d", resp.StatusCode)
	}
	return nil
}

// ListProjects returns the server's index of cached wikis.
func (s *RemoteStore) ListProjects(ctx context.Context) ([]ProjectEntry, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/processed_projects", nil)
	if err != nil {
		return nil, fmt.Errorf("building projects request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing cached projects: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("project listing returned status %d", resp.StatusCode)
	}

	var entries []ProjectEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding project listing: %w", err)
	}
	return entries, nil
}
