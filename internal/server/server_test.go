package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbanmart-dashboard/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{Server: config.ServerConfig{ShutdownTimeout: 5 * time.Second}}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGracefulServerRunsHooksOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "pong")
	})
	gs := NewGracefulServer(&http.Server{Handler: mux}, discard(), testConfig())

	var hooks atomic.Int32
	for range 2 {
		gs.RegisterShutdownHook(func(context.Context) error {
			hooks.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/ping", ln.Addr()))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.EqualValues(t, 2, hooks.Load())
}

func TestGracefulServerReportsHookFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gs := NewGracefulServer(&http.Server{Handler: http.NewServeMux()}, discard(), testConfig())
	gs.RegisterShutdownHook(func(context.Context) error { return fmt.Errorf("flush failed") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = gs.Serve(ctx, ln)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown hook 0 failed: flush failed")
}

func TestGracefulServerListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	gs := NewGracefulServer(&http.Server{Addr: ln.Addr().String()}, discard(), testConfig())
	err = gs.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
