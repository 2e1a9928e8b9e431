package livereload

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestHubBroadcastsToClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(Handler(hub, "http://localhost:0"))
	defer srv.Close()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/livereload", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Broadcast("abc123")
	hub.Broadcast("abc123")

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, `{"hash":"abc123"}`, readEvent(t, reader))

	hub.Broadcast("def456")
	assert.Equal(t, `{"hash":"def456"}`, readEvent(t, reader))
}

func TestHubSendsLastHashOnConnect(t *testing.T) {
	hub := NewHub()
	hub.Broadcast("first")
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, `{"hash":"first"}`, readEvent(t, bufio.NewReader(resp.Body)))
}

func TestHubShutdownRejectsClients(t *testing.T) {
	hub := NewHub()
	hub.Shutdown()
	hub.Shutdown()
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livereload", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScriptEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(NewHub(), "http://localhost:35729").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livereload.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"http://localhost:35729/livereload"`)
	assert.Equal(t, `<script src="http://localhost:35729/livereload.js"></script>`, Tag("http://localhost:35729"))
}
