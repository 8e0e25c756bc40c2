// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"context"
	"crypto/tls"
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTCPStreamDialerDialContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dialer := NewStreamOpenerDialerTCP(&net.Dialer{})
	_, err := dialer.DialContext(ctx, netip.MustParseAddrPort("127.0.0.1:5353"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestTLSStreamDialerDialContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dialer := &tlsStreamDialer{nd: &tls.Dialer{NetDialer: &net.Dialer{}, Config: &tls.Config{}}}
	_, err := dialer.DialContext(ctx, netip.MustParseAddrPort("127.0.0.1:853"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestQUICStreamDialerDialContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lc := &net.ListenConfig{}
	pconn, err := lc.ListenPacket(context.Background(), "udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pconn.Close()

	dialer := &quicStreamDialer{
		qd: NewQUICDialer(pconn, "example.com"),
	}
	_, err = dialer.DialContext(ctx, netip.MustParseAddrPort("127.0.0.1:853"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestStreamTransportExchangeDialContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := NewTransportTCP(&net.Dialer{}, netip.MustParseAddrPort("127.0.0.1:5353"))
	_, err := st.Exchange(ctx, newTXTQuery("meta.hello.lab."))
	require.ErrorIs(t, err, context.Canceled)
}
