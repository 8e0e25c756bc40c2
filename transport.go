// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"context"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

// DefaultQueryTimeout bounds a single query/response exchange.
const DefaultQueryTimeout = 2 * time.Second

// Transport sends one query and returns one answer or a failure. The
// [*Fetcher] depends only on this interface, so it can be exercised
// against stubs without any network.
type Transport interface {
	// Exchange sends query and returns the response. The context
	// bounds the whole exchange.
	Exchange(ctx context.Context, query *dns.Msg) (*dns.Msg, error)
}

// UDPTransport is a [Transport] over plain DNS-over-UDP, the
// reference transport for this protocol.
//
// Construct using [NewUDPTransport].
type UDPTransport struct {
	// Client is the underlying [*dns.Client].
	//
	// Set by [NewUDPTransport] to a client with
	// [DefaultQueryTimeout].
	Client *dns.Client

	// Endpoint is the server endpoint to query.
	Endpoint netip.AddrPort
}

var _ Transport = &UDPTransport{}

// NewUDPTransport creates a new [*UDPTransport] targeting endpoint.
func NewUDPTransport(endpoint netip.AddrPort) *UDPTransport {
	return &UDPTransport{
		Client:   &dns.Client{Timeout: DefaultQueryTimeout},
		Endpoint: endpoint,
	}
}

// Exchange implements [Transport].
func (t *UDPTransport) Exchange(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	resp, _, err := t.Client.ExchangeContext(ctx, query, t.Endpoint.String())
	return resp, err
}
