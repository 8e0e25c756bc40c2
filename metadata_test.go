// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMetadataHelloWorld(t *testing.T) {
	meta := NewMetadata([]byte("hello world"), DefaultChunkWidth)

	require.Equal(t, 1, meta.Chunks)
	require.Equal(t, EncodingBase64, meta.Encoding)
	require.Equal(t,
		"b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		meta.SHA256)
	require.Equal(t, int64(11), meta.Bytes)
	require.Equal(t,
		"chunks=1;enc=base64;sha256=b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9;bytes=11",
		meta.Format())
}

func TestParseMetadataRoundTrip(t *testing.T) {
	meta := NewMetadata([]byte("some stored file content"), 8)
	parsed, err := ParseMetadata(meta.Format())
	require.NoError(t, err)
	require.Equal(t, meta, parsed)
}

func TestParseMetadataTolerance(t *testing.T) {
	t.Run("unknown keys ignored", func(t *testing.T) {
		meta, err := ParseMetadata("chunks=3;ttl=60;flavor=vanilla")
		require.NoError(t, err)
		require.Equal(t, 3, meta.Chunks)
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		meta, err := ParseMetadata(" chunks = 2 ; sha256 = abcd ")
		require.NoError(t, err)
		require.Equal(t, 2, meta.Chunks)
		require.Equal(t, "abcd", meta.SHA256)
	})

	t.Run("segments without equals skipped", func(t *testing.T) {
		meta, err := ParseMetadata("garbage;chunks=1;;also-garbage")
		require.NoError(t, err)
		require.Equal(t, 1, meta.Chunks)
	})

	t.Run("optional keys default to skip", func(t *testing.T) {
		meta, err := ParseMetadata("chunks=5")
		require.NoError(t, err)
		require.Equal(t, 5, meta.Chunks)
		require.Empty(t, meta.SHA256)
		require.Zero(t, meta.Bytes)
	})

	t.Run("value keeps later equals signs", func(t *testing.T) {
		meta, err := ParseMetadata("chunks=1;enc=base=64")
		require.NoError(t, err)
		require.Equal(t, "base=64", meta.Encoding)
	})

	t.Run("non-numeric bytes treated as absent", func(t *testing.T) {
		meta, err := ParseMetadata("chunks=1;bytes=eleven")
		require.NoError(t, err)
		require.Zero(t, meta.Bytes)
	})
}

func TestParseMetadataMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"missing chunks", "enc=base64;bytes=11"},
		{"non-numeric chunks", "chunks=many"},
		{"negative chunks", "chunks=-1"},
		{"signed chunks", "chunks=+1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata(tt.input)
			require.ErrorIs(t, err, ErrMalformedMetadata)
		})
	}
}
