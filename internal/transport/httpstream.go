package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPExchanger streams a completion over a single chunked HTTP POST,
// decoding the response body incrementally as it arrives.
type HTTPExchanger struct {
	url    string
	client *http.Client
}

// NewHTTPExchanger creates an HTTP exchanger for the given completion
// stream endpoint.
func NewHTTPExchanger(url string) *HTTPExchanger {
	return &HTTPExchanger{
		url:    url,
		client: &http.Client{},
	}
}

// Exchange implements Exchanger.
func (h *HTTPExchanger) Exchange(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("stream endpoint returned %d: %s", resp.StatusCode, string(errBody))
	}

	var sb strings.Builder
	reader := bufio.NewReader(resp.Body)
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("reading stream: %w", err)
		}
	}
}
