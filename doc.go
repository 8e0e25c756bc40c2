// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnsfs tunnels file content through DNS TXT queries.
//
// A [*Dispatcher] serves files from a [Storage] as addressable base64
// chunks: "meta.<name>.<zone>" answers with a compact descriptor and
// "chunk<i>.<name>.<zone>" answers with the i-th chunk. A [*Fetcher]
// drives the query sequence through a [Transport], reassembles the
// chunks, and verifies length and digest against the descriptor.
//
// The API is intentionally small and designed for lab use cases.
//
// Every failure the server detects collapses to NXDOMAIN on the wire;
// richer causes exist only internally for logging and tests.
package dnsfs
