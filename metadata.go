// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EncodingBase64 is the only chunk encoding this protocol defines.
const EncodingBase64 = "base64"

// Metadata describes a stored file for the client: how many chunks to
// fetch and how to verify the reassembled bytes.
//
// Construct using [NewMetadata] or [ParseMetadata].
type Metadata struct {
	// Chunks is the number of chunks to fetch. Mandatory.
	Chunks int

	// Encoding names the chunk encoding. Optional on parse; the
	// server always emits [EncodingBase64].
	Encoding string

	// SHA256 is the lowercase hex digest of the file bytes. An empty
	// value means the digest check is skipped.
	SHA256 string

	// Bytes is the decoded file length. Zero means the length check
	// is skipped.
	Bytes int64
}

// NewMetadata derives the Metadata served for data when chunked at the
// given width. A non-positive width means [DefaultChunkWidth].
func NewMetadata(data []byte, width int) Metadata {
	digest := sha256.Sum256(data)
	return Metadata{
		Chunks:   ChunkCount(data, width),
		Encoding: EncodingBase64,
		SHA256:   hex.EncodeToString(digest[:]),
		Bytes:    int64(len(data)),
	}
}

// Format renders the wire descriptor: semicolon-delimited key=value
// pairs in fixed order, no surrounding whitespace.
func (m Metadata) Format() string {
	return fmt.Sprintf("chunks=%d;enc=%s;sha256=%s;bytes=%d",
		m.Chunks, m.Encoding, m.SHA256, m.Bytes)
}

// ParseMetadata parses a wire descriptor. Unknown keys are ignored and
// the optional keys (enc, sha256, bytes) default to their zero values,
// which disable the corresponding check. Parsing fails with
// [ErrMalformedMetadata] only when the mandatory chunks key is absent
// or not a non-negative integer.
func ParseMetadata(s string) (Metadata, error) {
	var (
		meta     Metadata
		gotCount bool
	)
	for segment := range strings.SplitSeq(s, ";") {
		key, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "chunks":
			count, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return Metadata{}, fmt.Errorf("%w: chunks=%q", ErrMalformedMetadata, value)
			}
			meta.Chunks = int(count)
			gotCount = true
		case "enc":
			meta.Encoding = value
		case "sha256":
			meta.SHA256 = value
		case "bytes":
			// A bad value is treated like an absent one: the
			// length check is simply skipped.
			if size, err := strconv.ParseInt(value, 10, 64); err == nil {
				meta.Bytes = size
			}
		}
	}
	if !gotCount {
		return Metadata{}, fmt.Errorf("%w: missing chunks key", ErrMalformedMetadata)
	}
	return meta, nil
}
