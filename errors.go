// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import "errors"

// Errors returned by this package. Wrap with fmt.Errorf("...: %w", err)
// to add context and test with [errors.Is].
var (
	// ErrNotFound means no stored file exists for the resolved name.
	ErrNotFound = errors.New("dnsfs: not found")

	// ErrProtocol means a query or reply did not match the protocol
	// grammar (malformed metadata, unexpected reply shape).
	ErrProtocol = errors.New("dnsfs: protocol error")

	// ErrIntegrity means the reassembled bytes failed the length or
	// digest check declared by the metadata.
	ErrIntegrity = errors.New("dnsfs: integrity error")

	// ErrTransport means a query produced no usable answer: timeout,
	// exchange failure, negative status, or an empty payload.
	ErrTransport = errors.New("dnsfs: transport error")

	// ErrMalformedMetadata means the mandatory chunks key of a
	// metadata descriptor is absent or non-numeric.
	ErrMalformedMetadata = errors.New("dnsfs: malformed metadata")
)
