package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/julianshen/repowiki/internal/repo"
)

// ErrRegenerationBusy is returned when a regeneration is already in
// flight; only one page may regenerate process-wide at a time.
var ErrRegenerationBusy = errors.New("a page regeneration is already in progress")

// Regenerator replaces a single already-rendered page through the
// dedicated synchronous backend endpoint, bypassing the streaming
// transport entirely.
type Regenerator struct {
	url      string
	provider string
	model    string
	custom   string
	client   *http.Client

	mu   sync.Mutex
	busy bool
}

// NewRegenerator creates a Regenerator for the regeneration endpoint.
func NewRegenerator(url, provider, model, customModel string) *Regenerator {
	return &Regenerator{
		url:      url,
		provider: provider,
		model:    model,
		custom:   customModel,
		client:   &http.Client{Timeout: 5 * time.Minute},
	}
}

type regenerateRequest struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	RepoType    string `json:"repo_type"`
	PageID      string `json:"page_id"`
	Language    string `json:"language"`
	Provider    string `json:"provider"`
	Model       string `json:"model,omitempty"`
	CustomModel string `json:"custom_model,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	RepoURL     string `json:"repo_url,omitempty"`
}

type regenerateResponse struct {
	Page Page `json:"page"`
}

// Regenerate requests a fresh rendering of one page and returns it. The
// caller replaces only that page's entry on success. Concurrent calls
// fail fast with ErrRegenerationBusy.
func (r *Regenerator) Regenerate(ctx context.Context, ref repo.Ref, pageID, language string) (*Page, error) {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return nil, ErrRegenerationBusy
	}
	r.busy = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()

	body, err := json.Marshal(regenerateRequest{
		Owner:       ref.Owner,
		Repo:        ref.Repo,
		RepoType:    ref.Type,
		PageID:      pageID,
		Language:    language,
		Provider:    r.provider,
		Model:       r.model,
		CustomModel: r.custom,
		AccessToken: ref.Token,
		RepoURL:     ref.WebURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding regenerate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating regenerate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("regenerate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("regenerate endpoint returned %d: %s", resp.StatusCode, string(errBody))
	}

	var parsed regenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding regenerate response: %w", err)
	}
	if parsed.Page.ID == "" {
		return nil, fmt.Errorf("regenerate endpoint returned no page")
	}
	return &parsed.Page, nil
}
