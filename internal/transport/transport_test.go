package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// wsEchoServer upgrades the connection, reads one request, streams the
// given chunks back as text frames, and closes cleanly.
func wsEchoServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var req Request
		require.NoError(t, json.Unmarshal(data, &req))

		for _, chunk := range chunks {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(chunk)))
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		conn.WriteMessage(websocket.CloseMessage, msg)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSExchangerAccumulatesFrames(t *testing.T) {
	srv := wsEchoServer(t, []string{"Hello, ", "streamed ", "world"})
	defer srv.Close()

	ex := NewWSExchanger(wsURL(srv))
	text, err := ex.Exchange(context.Background(), Request{
		RepoURL:  "https://github.com/acme/widgets",
		Messages: []Message{NewUserMessage("plan the wiki")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, streamed world", text)
}

func TestWSExchangerDialFailure(t *testing.T) {
	ex := NewWSExchanger("ws://127.0.0.1:1/ws/chat")
	_, err := ex.Exchange(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "websocket dial")
}

func TestWSExchangerContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
		// Hold the connection open without responding.
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ex := NewWSExchanger(wsURL(srv))
	_, err := ex.Exchange(ctx, Request{})
	require.Error(t, err)
}

func TestHTTPExchangerStreamsChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user", req.Messages[0].Role)

		flusher := w.(http.Flusher)
		for _, chunk := range []string{"alpha ", "beta ", "gamma"} {
			fmt.Fprint(w, chunk)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	ex := NewHTTPExchanger(srv.URL)
	text, err := ex.Exchange(context.Background(), Request{
		Messages: []Message{NewUserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta gamma", text)
}

func TestHTTPExchangerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ex := NewHTTPExchanger(srv.URL)
	_, err := ex.Exchange(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

type stubExchanger struct {
	text  string
	err   error
	calls int
}

func (s *stubExchanger) Exchange(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestFallbackUsesPrimaryOnSuccess(t *testing.T) {
	primary := &stubExchanger{text: "from primary"}
	fallback := &stubExchanger{text: "from fallback"}

	f := &FallbackExchanger{Primary: primary, Fallback: fallback}
	text, err := f.Exchange(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "from primary", text)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackOnPrimaryError(t *testing.T) {
	primary := &stubExchanger{err: errors.New("dial timeout")}
	fallback := &stubExchanger{text: "from fallback"}

	f := &FallbackExchanger{Primary: primary, Fallback: fallback}
	text, err := f.Exchange(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackBothFail(t *testing.T) {
	primary := &stubExchanger{err: errors.New("dial timeout")}
	fallback := &stubExchanger{err: errors.New("connection refused")}

	f := &FallbackExchanger{Primary: primary, Fallback: fallback}
	_, err := f.Exchange(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both transports failed")
}

func TestLimitedExchangerZeroBudgetPassthrough(t *testing.T) {
	inner := &stubExchanger{text: "ok"}
	ex := NewLimitedExchanger(inner, 0)
	assert.Same(t, Exchanger(inner), ex)
}

func TestLimitedExchangerAdmitsWithinBurst(t *testing.T) {
	inner := &stubExchanger{text: "ok"}
	ex := NewLimitedExchanger(inner, 10)

	text, err := ex.Exchange(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, inner.calls)
}
