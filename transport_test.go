// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUDPTransport(t *testing.T) {
	endpoint := netip.MustParseAddrPort("127.0.0.1:5353")
	dt := NewUDPTransport(endpoint)

	require.NotNil(t, dt.Client)
	require.Equal(t, DefaultQueryTimeout, dt.Client.Timeout)
	require.Equal(t, endpoint, dt.Endpoint)
}

func TestUDPTransportExchangeContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dt := NewUDPTransport(netip.MustParseAddrPort("127.0.0.1:5353"))
	_, err := dt.Exchange(ctx, newTXTQuery("meta.hello.lab."))
	require.Error(t, err)
}
