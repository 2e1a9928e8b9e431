package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerStartsAndStopsListeners(t *testing.T) {
	hello := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "hello") })
	s := New(slog.New(slog.DiscardHandler), nil,
		Listener{Name: "preview", Addr: "127.0.0.1:0", Handler: hello},
		Listener{Name: "metrics", Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()},
	)
	require.NoError(t, s.Start(context.Background()))

	resp, err := http.Get("http://" + s.Addr("preview") + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "hello", string(body))

	resp, err = http.Get("http://" + s.Addr("metrics") + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
	_, err = http.Get("http://" + s.Addr("preview") + "/")
	assert.Error(t, err)
}

func TestServerFailsFastOnBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New(nil, nil,
		Listener{Name: "free", Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()},
		Listener{Name: "busy", Addr: ln.Addr().String(), Handler: http.NotFoundHandler()},
	)
	err = s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busy")
	assert.Empty(t, s.Addr("free"), "no listener starts when one fails to bind")
}
