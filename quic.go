//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// See https://datatracker.ietf.org/doc/rfc9250/
//

package dnsfs

import (
	"context"
	"crypto/tls"
	"net"
	"net/netip"
	"sync"

	"github.com/miekg/dns"
	"github.com/quic-go/quic-go"
)

// NewTLSConfigDNSOverQUIC returns the [*tls.Config] to use for
// DNS-over-QUIC.
func NewTLSConfigDNSOverQUIC(serverName string) *tls.Config {
	return &tls.Config{
		NextProtos: []string{"doq"},
		ServerName: serverName,
	}
}

// QUICDialer allows to dial a [*quic.Conn] with a given
// [netip.AddrPort] and the [*quic.Config], [*tls.Config], and
// [*quic.Transport] fields.
type QUICDialer struct {
	// QUICConfig contains OPTIONAL [*quic.Config].
	QUICConfig *quic.Config

	// TLSConfig is the MANDATORY [*tls.Config].
	TLSConfig *tls.Config

	// Transport is the MANDATORY [*quic.Transport].
	Transport *quic.Transport
}

// NewQUICDialer creates a new [*QUICDialer] using the given serverName
// for the [*tls.Config] and [net.PacketConn] for QUIC.
func NewQUICDialer(pconn net.PacketConn, serverName string) *QUICDialer {
	return &QUICDialer{
		TLSConfig:  NewTLSConfigDNSOverQUIC(serverName),
		QUICConfig: &quic.Config{},
		Transport:  &quic.Transport{Conn: pconn},
	}
}

// Dial creates a [*quic.Conn] using the given argument and the
// structure fields.
func (qdd *QUICDialer) Dial(ctx context.Context, address netip.AddrPort) (*quic.Conn, error) {
	udpAddr := net.UDPAddrFromAddrPort(address)
	return qdd.Transport.Dial(ctx, udpAddr, qdd.TLSConfig, qdd.QUICConfig)
}

// NewTransportQUIC returns a new [*StreamTransport] for DNS over QUIC.
func NewTransportQUIC(dialer *QUICDialer, endpoint netip.AddrPort) *StreamTransport {
	return NewStreamTransport(&quicStreamDialer{dialer}, endpoint)
}

// NewQUICStreamOpener creates a [StreamOpener] from an existing
// [*quic.Conn].
func NewQUICStreamOpener(conn *quic.Conn) StreamOpener {
	return &quicConnAdapter{qconn: conn}
}

// quicStreamDialer implements [StreamOpenerDialer] for QUIC.
type quicStreamDialer struct {
	qd *QUICDialer
}

var _ StreamOpenerDialer = &quicStreamDialer{}

// DialContext implements [StreamOpenerDialer].
func (d *quicStreamDialer) DialContext(ctx context.Context, address netip.AddrPort) (StreamOpener, error) {
	conn, err := d.qd.Dial(ctx, address)
	if err != nil {
		return nil, err
	}
	return &quicConnAdapter{qconn: conn}, nil
}

// quicConnAdapter adapts [*quic.Conn] to [StreamOpener].
type quicConnAdapter struct {
	qconn *quic.Conn
	once  sync.Once
}

// Close implements [StreamOpener].
//
// Closing w/o specific error -- RFC 9250 Sect. 4.3.
func (q *quicConnAdapter) Close() (err error) {
	q.once.Do(func() {
		const quicNoError = 0x00
		err = q.qconn.CloseWithError(quicNoError, "")
	})
	return
}

// MutateQuery implements [StreamOpener].
//
// RFC 9250 Sect. 4.2.1: the client MUST set the DNS message ID to 0.
func (q *quicConnAdapter) MutateQuery(query *dns.Msg) {
	query.Id = 0
}

// OpenStream implements [StreamOpener].
func (q *quicConnAdapter) OpenStream() (Stream, error) {
	return q.qconn.OpenStream()
}
