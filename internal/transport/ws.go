package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// openTimeout bounds the websocket handshake. A backend that cannot
// accept the connection within this window fails the attempt so the
// fallback path can take over.
const openTimeout = 5 * time.Second

// WSExchanger streams a completion over a persistent websocket. The
// request is serialized and sent once on open; inbound text frames are
// accumulated until the server closes the connection.
type WSExchanger struct {
	url    string
	dialer *websocket.Dialer
}

// NewWSExchanger creates a websocket exchanger for the given ws:// or
// wss:// URL.
func NewWSExchanger(url string) *WSExchanger {
	return &WSExchanger{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: openTimeout,
		},
	}
}

// Exchange implements Exchanger. The connection is always closed before
// returning, on success, error, and context cancellation alike.
func (w *WSExchanger) Exchange(ctx context.Context, req Request) (string, error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return "", fmt.Errorf("websocket dial %s: %w", w.url, err)
	}
	defer conn.Close()

	// Close the connection when the context is cancelled so a blocked
	// ReadMessage unblocks. The sentinel distinguishes cancellation from
	// a natural close.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return "", fmt.Errorf("websocket send: %w", err)
	}

	var sb strings.Builder
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return sb.String(), nil
			}
			if ctx.Err() != nil {
				return "", fmt.Errorf("websocket exchange: %w", ctx.Err())
			}
			return "", fmt.Errorf("websocket read: %w", err)
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			sb.Write(data)
		}
	}
}
