// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"context"
	"crypto/tls"
	"net"
	"net/netip"

	"github.com/miekg/dns"
)

// NewTLSConfigDNSOverTLS returns the [*tls.Config] to use for
// DNS-over-TLS.
func NewTLSConfigDNSOverTLS(serverName string) *tls.Config {
	return &tls.Config{
		NextProtos: []string{"dot"},
		ServerName: serverName,
	}
}

// NewTLSDialerDNSOverTLS returns the [*tls.Dialer] to use for
// DNS-over-TLS.
func NewTLSDialerDNSOverTLS(serverName string) *tls.Dialer {
	return &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config:    NewTLSConfigDNSOverTLS(serverName),
	}
}

// TLSDialer is typically [*tls.Dialer] or a compatible TLS dialer.
type TLSDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NewTransportTLS returns a new [*StreamTransport] for DNS over TLS.
//
// The caller is responsible for ensuring the dialer actually
// performs TLS.
func NewTransportTLS(dialer TLSDialer, endpoint netip.AddrPort) *StreamTransport {
	return NewStreamTransport(&tlsStreamDialer{dialer}, endpoint)
}

// tlsStreamDialer implements [StreamOpenerDialer] for TLS.
type tlsStreamDialer struct {
	nd TLSDialer
}

var _ StreamOpenerDialer = &tlsStreamDialer{}

// DialContext implements [StreamOpenerDialer].
func (d *tlsStreamDialer) DialContext(ctx context.Context, address netip.AddrPort) (StreamOpener, error) {
	conn, err := d.nd.DialContext(ctx, "tcp", address.String())
	if err != nil {
		return nil, err
	}
	return &tlsStreamConn{conn}, nil
}

// tlsStreamConn implements [StreamOpener] for TLS.
//
// It behaves like [tcpStreamConn]: the TLS session is the stream.
type tlsStreamConn struct {
	conn net.Conn
}

// Close implements [StreamOpener].
func (s *tlsStreamConn) Close() error {
	return s.conn.Close()
}

// MutateQuery implements [StreamOpener].
func (s *tlsStreamConn) MutateQuery(query *dns.Msg) {
	// Nothing to mutate for DoT.
}

// OpenStream implements [StreamOpener].
func (s *tlsStreamConn) OpenStream() (Stream, error) {
	return &tcpStream{s.conn}, nil
}
