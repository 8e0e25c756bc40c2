// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"encoding/base64"
	"strings"
)

// DefaultChunkWidth is the default maximum number of base64 characters
// per chunk. TXT strings are limited to 255 octets on the wire; the
// default keeps chunks well under that bound.
const DefaultChunkWidth = 180

// chunkWidth normalizes a width argument: non-positive means default.
func chunkWidth(width int) int {
	if width <= 0 {
		return DefaultChunkWidth
	}
	return width
}

// EncodeChunks base64-encodes data and partitions the encoding into
// consecutive substrings of at most width characters, in order. The
// last chunk may be shorter; an empty input yields no chunks. A
// non-positive width means [DefaultChunkWidth].
func EncodeChunks(data []byte, width int) []string {
	width = chunkWidth(width)
	b64 := base64.StdEncoding.EncodeToString(data)
	var chunks []string
	for idx := 0; idx < len(b64); idx += width {
		end := min(idx+width, len(b64))
		chunks = append(chunks, b64[idx:end])
	}
	return chunks
}

// JoinChunks concatenates chunks in the given order and base64-decodes
// the result. For chunks produced by [EncodeChunks] and joined in
// ascending index order, JoinChunks(EncodeChunks(b, w)) == b for every
// byte sequence b, including the empty one. No property holds for any
// other order.
func JoinChunks(chunks []string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.Join(chunks, ""))
}

// ChunkCount returns ceil(len(base64(data)) / width). An empty input
// yields zero chunks.
func ChunkCount(data []byte, width int) int {
	width = chunkWidth(width)
	encoded := base64.StdEncoding.EncodedLen(len(data))
	return (encoded + width - 1) / width
}
