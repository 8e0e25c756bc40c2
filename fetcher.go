// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

// MaxChunkCount bounds the chunk count a [*Fetcher] accepts from a
// metadata descriptor. With the default chunk width this allows
// files of roughly 140 MiB; anything larger is refused before any
// chunk query is issued, so a misbehaving server cannot force an
// unbounded allocation.
const MaxChunkCount = 1 << 20

// Fetcher retrieves one file through a [Transport] by querying the
// metadata descriptor and then every chunk, and verifies the
// reassembled bytes against the descriptor.
//
// The default mode is strictly sequential: chunks are requested one
// at a time in ascending index order and any failure aborts the whole
// fetch. There is no retry and no partial result.
//
// The zero value is not useful; set at least Transport.
type Fetcher struct {
	// Transport exchanges queries with the server. Mandatory.
	Transport Transport

	// Zone is the zone suffix to query under. Empty means
	// [DefaultZone].
	Zone string

	// QueryTimeout bounds each single exchange. Non-positive means
	// [DefaultQueryTimeout].
	QueryTimeout time.Duration

	// Concurrency enables the opt-in concurrent chunk mode when
	// greater than one. The sequential mode stays the reference
	// behavior; even in concurrent mode chunks are joined strictly
	// in ascending index order and any failure aborts the fetch.
	Concurrency int

	// Logger is used for structured logging. If nil, [slog.Default]
	// is used.
	Logger *slog.Logger
}

// logger returns the configured logger.
func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// queryName builds the fully qualified name for a label under the
// configured zone.
func (f *Fetcher) queryName(label, name string) string {
	zone := f.Zone
	if zone == "" {
		zone = DefaultZone
	}
	return dns.Fqdn(label + "." + name + "." + strings.Trim(zone, "."))
}

// queryTimeout returns the configured per-query timeout.
func (f *Fetcher) queryTimeout() time.Duration {
	if f.QueryTimeout <= 0 {
		return DefaultQueryTimeout
	}
	return f.QueryTimeout
}

// Fetch retrieves and verifies the file stored under name.
//
// Errors wrap [ErrTransport] for failed or negative exchanges,
// [ErrProtocol] for malformed replies, and [ErrIntegrity] when the
// reassembled bytes do not match the declared length or digest. Every
// error is fatal: nothing retrieved so far is kept.
func (f *Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	// 1. Query the metadata descriptor.
	metaText, err := f.queryTXT(ctx, f.queryName("meta", name))
	if err != nil {
		return nil, err
	}

	// 2. Parse it.
	meta, err := ParseMetadata(metaText)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProtocol, err.Error())
	}
	if meta.Chunks > MaxChunkCount {
		return nil, fmt.Errorf("%w: declared chunk count %d exceeds %d",
			ErrProtocol, meta.Chunks, MaxChunkCount)
	}
	f.logger().Debug("dnsfs: fetched metadata",
		slog.String("name", name),
		slog.Int("chunks", meta.Chunks),
		slog.Int64("bytes", meta.Bytes),
	)

	// 3. Fetch every chunk.
	chunks, err := f.fetchChunks(ctx, name, meta.Chunks)
	if err != nil {
		return nil, err
	}

	// 4. Reassemble in ascending index order.
	data, err := JoinChunks(chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProtocol, err.Error())
	}

	// 5. Verify the declared length, when present.
	if meta.Bytes != 0 && int64(len(data)) != meta.Bytes {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d",
			ErrIntegrity, len(data), meta.Bytes)
	}

	// 6. Verify the declared digest, when present.
	if meta.SHA256 != "" {
		digest := sha256.Sum256(data)
		if hex.EncodeToString(digest[:]) != meta.SHA256 {
			return nil, fmt.Errorf("%w: sha256 mismatch (data corrupted or wrong order)",
				ErrIntegrity)
		}
	}

	// 7. Hand the verified bytes to the caller.
	return data, nil
}

// fetchChunks retrieves count chunks for name, sequentially by
// default and concurrently when configured.
func (f *Fetcher) fetchChunks(ctx context.Context, name string, count int) ([]string, error) {
	chunks := make([]string, count)

	if f.Concurrency > 1 {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(f.Concurrency)
		for index := range chunks {
			g.Go(func() error {
				text, err := f.queryTXT(ctx, f.queryName(fmt.Sprintf("chunk%d", index), name))
				if err != nil {
					return err
				}
				chunks[index] = text
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return chunks, nil
	}

	// Ascending index order is enforced here: the server attaches no
	// ordering information inside the payload.
	for index := range chunks {
		text, err := f.queryTXT(ctx, f.queryName(fmt.Sprintf("chunk%d", index), name))
		if err != nil {
			return nil, err
		}
		chunks[index] = text
	}
	return chunks, nil
}

// queryTXT exchanges a single TXT question and returns the answer
// text. Exchange failures, negative statuses, and empty answers all
// wrap [ErrTransport].
func (f *Fetcher) queryTXT(ctx context.Context, qname string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.queryTimeout())
	defer cancel()

	query := new(dns.Msg)
	query.SetQuestion(qname, dns.TypeTXT)

	resp, err := f.Transport.Exchange(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrTransport, qname, err.Error())
	}
	if resp.Rcode != dns.RcodeSuccess || len(resp.Answer) < 1 {
		return "", fmt.Errorf("%w: NXDOMAIN/empty for %s", ErrTransport, qname)
	}
	txt, ok := resp.Answer[0].(*dns.TXT)
	if !ok {
		return "", fmt.Errorf("%w: %s: not a TXT answer", ErrTransport, qname)
	}
	return strings.Join(txt.Txt, ""), nil
}
