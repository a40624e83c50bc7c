package httptransport

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig(":8080")
	server := NewServer(cfg, http.NotFoundHandler())

	require.Equal(t, ":8080", server.Addr)
	require.Equal(t, 5*time.Second, server.ReadTimeout)
	require.Equal(t, 10*time.Second, server.WriteTimeout)
	require.Equal(t, 60*time.Second, server.IdleTimeout)
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, DefaultServerConfig("127.0.0.1:0"), http.NotFoundHandler(), logger)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenErrors(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	err := Run(context.Background(), DefaultServerConfig("not-an-address"), http.NotFoundHandler(), logger)

	require.Error(t, err)
}
