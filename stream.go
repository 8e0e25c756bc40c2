//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Stream framing for DNS over TCP, TLS, and QUIC.
//
// See https://datatracker.ietf.org/doc/rfc9250/
//

package dnsfs

import (
	"bufio"
	"context"
	"io"
	"math"
	"net/netip"
	"time"

	"github.com/bassosimone/runtimex"
	"github.com/miekg/dns"
)

// Stream is a stream suitable for DNS over TCP, TLS, or QUIC.
type Stream interface {
	// SetDeadline sets the I/O deadline.
	SetDeadline(t time.Time) error

	// We can obviously do I/O with the stream.
	io.ReadWriter

	// The semantics of closing a stream depends on the protocol.
	//
	// For TCP and TLS the [Stream] is the connection itself and
	// Close is a no-op.
	//
	// For QUIC this closes the [*quic.Stream], which signals the
	// server through the STREAM FIN mechanism.
	io.Closer
}

// StreamOpener abstracts over a TCP, TLS, or QUIC connection.
type StreamOpener interface {
	// Close closes the underlying connection.
	io.Closer

	// MutateQuery applies the settings required by the protocol we
	// are actually using (e.g., DoQ zeroes the query ID).
	MutateQuery(query *dns.Msg)

	// OpenStream opens a new stream over the connection.
	OpenStream() (Stream, error)
}

// StreamOpenerDialer allows dialing a TCP, TLS, or QUIC connection.
type StreamOpenerDialer interface {
	// DialContext creates a new [StreamOpener].
	DialContext(ctx context.Context, address netip.AddrPort) (StreamOpener, error)
}

// StreamTransport is a [Transport] for DNS over TCP, TLS, and QUIC.
//
// Construct using [NewTransportTCP], [NewTransportTLS],
// [NewTransportQUIC], or [NewStreamTransport] with a custom dialer.
//
// StreamTransport creates a new connection for each Exchange call and
// targets the specific [netip.AddrPort] endpoint configured at
// construction time.
type StreamTransport struct {
	// dialer builds the stream for exchanging messages.
	//
	// Set by [NewStreamTransport] to the user-provided value.
	dialer StreamOpenerDialer

	// endpoint is the server endpoint to query.
	//
	// Set by [NewStreamTransport] to the user-provided value.
	endpoint netip.AddrPort
}

var _ Transport = &StreamTransport{}

// NewStreamTransport creates a new [*StreamTransport].
func NewStreamTransport(dialer StreamOpenerDialer, endpoint netip.AddrPort) *StreamTransport {
	return &StreamTransport{dialer: dialer, endpoint: endpoint}
}

// Exchange implements [Transport].
func (st *StreamTransport) Exchange(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	// 1. Create the connection.
	conn, err := st.dialer.DialContext(ctx, st.endpoint)
	if err != nil {
		return nil, err
	}

	// 2. Use a single connection per request and make sure we react
	// to the context being canceled early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	return st.exchangeWithStreamOpener(ctx, conn, query)
}

// exchangeWithStreamOpener performs the exchange over an established
// connection.
func (st *StreamTransport) exchangeWithStreamOpener(
	ctx context.Context, conn StreamOpener, query *dns.Msg) (*dns.Msg, error) {
	// 1. Open the stream for sending the query.
	stream, err := conn.OpenStream()
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	// 2. Use the context deadline to limit the query lifetime.
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(deadline)
	}

	// 3. Mutate a copy of the query and serialize it. The caller's
	// query is left unchanged.
	query = query.Copy()
	conn.MutateQuery(query)
	rawQuery, err := query.Pack()
	if err != nil {
		return nil, err
	}

	// 4. Wrap the query into a frame and send it.
	rawQueryFrame := newStreamMsgFrame(rawQuery)
	if _, err := stream.Write(rawQueryFrame); err != nil {
		return nil, err
	}

	// 5. Ensure we close the stream when using DoQ to signal the
	// server that no further data follows on this stream.
	//
	// RFC 9250 Sect. 4.2: the client MUST indicate through the
	// STREAM FIN mechanism that no further data will be sent.
	//
	// Obviously, this is a no-op for TCP/TLS.
	stream.Close()

	// 6. Wrap the stream to avoid issuing too many reads, then read
	// the response header and message.
	br := bufio.NewReader(stream)
	header := make([]byte, 2)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, err
	}
	length := int(header[0])<<8 | int(header[1])
	rawResp := make([]byte, length)
	if _, err := io.ReadFull(br, rawResp); err != nil {
		return nil, err
	}

	// 7. Parse the response and return.
	respMsg := new(dns.Msg)
	if err := respMsg.Unpack(rawResp); err != nil {
		return nil, err
	}
	return respMsg, nil
}

// newStreamMsgFrame creates a new raw frame for sending a message
// over a stream, prefixing it with the two-octet length.
func newStreamMsgFrame(rawMsg []byte) []byte {
	runtimex.Assert(len(rawMsg) <= math.MaxUint16)
	rawMsgFrame := []byte{byte(len(rawMsg) >> 8)}
	rawMsgFrame = append(rawMsgFrame, byte(len(rawMsg)))
	rawMsgFrame = append(rawMsgFrame, rawMsg...)
	return rawMsgFrame
}
