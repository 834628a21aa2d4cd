package main

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	closed bool
	err    error
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.err
}

func TestServeClosesResourcesOnShutdown(t *testing.T) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	first := &closeRecorder{err: errors.New("already closed")}
	second := &closeRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, e, "127.0.0.1:0", first, second)
	}()

	require.Eventually(t, func() bool { return e.ListenerAddr() != nil }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestServeReturnsStartError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	closer := &closeRecorder{}

	err = serve(context.Background(), e, ln.Addr().String(), closer)

	assert.Error(t, err)
	assert.True(t, closer.closed)
}
