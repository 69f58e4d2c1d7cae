package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteParser delegates structure parsing to the backend normalization
// endpoint, the last resort when local XML and JSON strategies fail.
type RemoteParser struct {
	url    string
	client *http.Client
}

// NewRemoteParser creates a remote parser for the given endpoint URL.
func NewRemoteParser(url string) *RemoteParser {
	return &RemoteParser{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type remoteParseRequest struct {
	RawText      string `json:"raw_text"`
	OutputFormat string `json:"output_format"`
}

// Parse POSTs the raw response text to the backend and normalizes its
// JSON reply with the same normalizer the local JSON strategy uses.
func (r *RemoteParser) Parse(ctx context.Context, rawText string, comprehensive bool) (*Structure, error) {
	body, err := json.Marshal(remoteParseRequest{RawText: rawText, OutputFormat: "json"})
	if err != nil {
		return nil, fmt.Errorf("encoding parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote parser request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("remote parser returned %d: %s", resp.StatusCode, string(errBody))
	}

	var obj map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("decoding remote parser reply: %w", err)
	}

	return normalizeStructure(obj, comprehensive), nil
}
