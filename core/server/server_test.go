package server_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/memberportal/core/server"
)

func waitListening(t *testing.T, srv *server.Server) string {
	t.Helper()
	var addr string
	require.Eventually(t, func() bool {
		addr = srv.Addr()
		return addr != "127.0.0.1:0"
	}, 2*time.Second, 10*time.Millisecond)
	return addr
}

func TestServer_RunServesAndShutsDown(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:0", server.WithShutdownTimeout(time.Second))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(gctx, handler))

	addr := waitListening(t, srv)

	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	require.NoError(t, g.Wait())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

func TestServer_StartTwice(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = srv.Start(ctx, http.NotFoundHandler()) }()
	waitListening(t, srv)

	err := srv.Start(ctx, http.NotFoundHandler())
	require.ErrorIs(t, err, server.ErrServerAlreadyRunning)
	require.NoError(t, srv.Stop())
}

func TestServer_StopWhenNotRunning(t *testing.T) {
	t.Parallel()

	assert.NoError(t, server.New(":0").Stop())
}

func TestServer_ListenError(t *testing.T) {
	t.Parallel()

	err := server.New("256.0.0.1:99999").Start(context.Background(), http.NotFoundHandler())
	require.ErrorIs(t, err, server.ErrListen)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		srv, err := server.NewFromConfig(server.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, ":8080", srv.Addr())
	})

	t.Run("missing_address", func(t *testing.T) {
		_, err := server.NewFromConfig(server.Config{ReadTimeout: time.Second})
		require.ErrorIs(t, err, server.ErrMissingAddress)
	})
}
