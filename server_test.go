// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// newQuietLogger creates a logger that discards everything.
func newQuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerStartAndClose(t *testing.T) {
	// Start must not return before the serve loops are running, so an
	// immediate Close always shuts down listeners that exist.
	srv := NewServer(&Dispatcher{Storage: newHelloStorage()}, newQuietLogger())
	require.NoError(t, srv.Start("127.0.0.1:0"))
	require.NotEmpty(t, srv.Address())
	require.NoError(t, srv.Close())
}

func TestServerCloseReleasesSockets(t *testing.T) {
	first := NewServer(&Dispatcher{Storage: newHelloStorage()}, newQuietLogger())
	require.NoError(t, first.Start("127.0.0.1:0"))
	addr := first.Address()
	require.NoError(t, first.Close())

	// The address must be immediately bindable again.
	second := NewServer(&Dispatcher{Storage: newHelloStorage()}, newQuietLogger())
	require.NoError(t, second.Start(addr))
	require.NoError(t, second.Close())
}

func TestServerStartBadAddress(t *testing.T) {
	srv := NewServer(&Dispatcher{Storage: newHelloStorage()}, newQuietLogger())
	require.Error(t, srv.Start("300.300.300.300:0"))
}

func TestNewServerNilLoggerUsesDefault(t *testing.T) {
	srv := NewServer(&Dispatcher{Storage: newHelloStorage()}, nil)
	require.NotNil(t, srv.logger)
}
