// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// Default protocol parameters, matching the lab deployment.
const (
	// DefaultZone is the default zone suffix for tunnel queries.
	DefaultZone = "lab."

	// DefaultTTL is the TTL attached to every TXT answer.
	DefaultTTL = 60

	// defaultWelcome answers a bare zone query.
	defaultWelcome = "dnsfs-lab: use meta.<name>.lab"
)

// Query is one inbound question, independent of any wire transport.
type Query struct {
	// Name is the fully qualified query name.
	Name string

	// Type is the DNS record type, e.g. [dns.TypeTXT].
	Type uint16
}

// ReplyStatus is the wire-visible outcome of a dispatch.
type ReplyStatus int

const (
	// StatusNotFound is the uniform negative status. The wire
	// boundary never distinguishes why a query was refused.
	StatusNotFound = ReplyStatus(iota)

	// StatusOK means Payload carries one TXT answer.
	StatusOK
)

// Reply answers exactly one [Query].
type Reply struct {
	// Status tells whether Payload is meaningful.
	Status ReplyStatus

	// Payload is the TXT answer text when Status is [StatusOK].
	Payload string
}

// dispatchCause records why a dispatch ended the way it did. It is
// deliberately internal: on the wire every non-success collapses to
// [StatusNotFound], but logs and tests want the real reason.
type dispatchCause int

const (
	causeOK = dispatchCause(iota)
	causeWelcome
	causeOutOfZone
	causeWrongType
	causeBadLabel
	causeUnknownName
	causeBadIndex
)

// String implements [fmt.Stringer].
func (c dispatchCause) String() string {
	switch c {
	case causeOK:
		return "ok"
	case causeWelcome:
		return "welcome"
	case causeOutOfZone:
		return "out-of-zone"
	case causeWrongType:
		return "wrong-type"
	case causeBadLabel:
		return "bad-label"
	case causeUnknownName:
		return "unknown-name"
	case causeBadIndex:
		return "bad-index"
	default:
		return "unknown"
	}
}

// Dispatcher maps tunnel queries to metadata or chunk payloads. It
// holds no mutable state across calls: every reply is recomputed from
// [Storage], so a single Dispatcher is safe for concurrent use. The
// price is that each chunk query re-reads and re-encodes the whole
// file.
//
// The zero value is not useful; set at least Storage.
type Dispatcher struct {
	// Storage resolves logical names to bytes. Mandatory.
	Storage Storage

	// Zone is the zone suffix queries must fall under. Empty means
	// [DefaultZone].
	Zone string

	// ChunkWidth bounds the chunk payload width. Non-positive means
	// [DefaultChunkWidth].
	ChunkWidth int

	// Welcome answers a bare zone query. Empty means the default
	// welcome text.
	Welcome string

	// Logger is used for structured logging. If nil, [slog.Default]
	// is used.
	Logger *slog.Logger
}

// zone returns the configured zone suffix, lowercased and fully
// qualified, so "lab" and "lab." configure the same zone.
func (d *Dispatcher) zone() string {
	if d.Zone == "" {
		return DefaultZone
	}
	return strings.ToLower(dns.Fqdn(d.Zone))
}

// welcome returns the configured welcome payload.
func (d *Dispatcher) welcome() string {
	if d.Welcome == "" {
		return defaultWelcome
	}
	return d.Welcome
}

// logger returns the configured logger.
func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Dispatch produces the [Reply] for a [Query]. It is a pure function
// of the query and the storage contents and can be exercised in tests
// without any live transport.
func (d *Dispatcher) Dispatch(query Query) Reply {
	reply, cause := d.dispatch(query)
	d.logger().Debug("dnsfs: dispatch",
		slog.String("name", query.Name),
		slog.Int("type", int(query.Type)),
		slog.String("cause", cause.String()),
	)
	return reply
}

// dispatch implements the query state machine. Checks run in order
// and the first failing one short-circuits to the negative reply.
func (d *Dispatcher) dispatch(query Query) (Reply, dispatchCause) {
	// 1. Only serve names under our zone, case-insensitively.
	qname := strings.ToLower(query.Name)
	zone := d.zone()
	if !strings.HasSuffix(qname, zone) {
		return Reply{Status: StatusNotFound}, causeOutOfZone
	}

	// 2. Only serve TXT questions.
	if query.Type != dns.TypeTXT {
		return Reply{Status: StatusNotFound}, causeWrongType
	}

	// 3. Strip the zone suffix. An empty label is the welcome query,
	// not an error.
	label := strings.Trim(strings.TrimSuffix(qname, zone), ".")
	if label == "" {
		return Reply{Status: StatusOK, Payload: d.welcome()}, causeWelcome
	}

	// 4. Route on the label shape: meta.<name> or chunk<N>.<name>.
	parts := strings.Split(label, ".")
	if len(parts) != 2 {
		return Reply{Status: StatusNotFound}, causeBadLabel
	}
	switch {
	case parts[0] == "meta":
		return d.serveMeta(parts[1])
	case strings.HasPrefix(parts[0], "chunk"):
		return d.serveChunk(parts[0][len("chunk"):], parts[1])
	default:
		return Reply{Status: StatusNotFound}, causeBadLabel
	}
}

// serveMeta answers meta.<rawName> with the file descriptor.
func (d *Dispatcher) serveMeta(rawName string) (Reply, dispatchCause) {
	data, ok := d.readFile(rawName)
	if !ok {
		return Reply{Status: StatusNotFound}, causeUnknownName
	}
	meta := NewMetadata(data, d.ChunkWidth)
	return Reply{Status: StatusOK, Payload: meta.Format()}, causeOK
}

// serveChunk answers chunk<indexPart>.<rawName> with one chunk.
func (d *Dispatcher) serveChunk(indexPart, rawName string) (Reply, dispatchCause) {
	index, ok := parseChunkIndex(indexPart)
	if !ok {
		return Reply{Status: StatusNotFound}, causeBadLabel
	}
	data, found := d.readFile(rawName)
	if !found {
		return Reply{Status: StatusNotFound}, causeUnknownName
	}
	chunks := EncodeChunks(data, d.ChunkWidth)
	if index >= len(chunks) {
		return Reply{Status: StatusNotFound}, causeBadIndex
	}
	return Reply{Status: StatusOK, Payload: chunks[index]}, causeOK
}

// readFile sanitizes rawName and reads the backing bytes.
func (d *Dispatcher) readFile(rawName string) ([]byte, bool) {
	name := SanitizeName(rawName)
	data, err := d.Storage.ReadFile(name)
	if err != nil {
		d.logger().Debug("dnsfs: storage read failed",
			slog.String("name", name),
			slog.Any("err", err),
		)
		return nil, false
	}
	return data, true
}

// parseChunkIndex parses the digits following "chunk" as a
// non-negative decimal index. Signs, whitespace, and empty strings
// are rejected.
func parseChunkIndex(s string) (int, bool) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return index, true
}

// ServeDNS implements [dns.Handler], adapting [*Dispatcher.Dispatch]
// to the wire: [StatusOK] becomes a single authoritative TXT answer
// and [StatusNotFound] becomes NXDOMAIN.
func (d *Dispatcher) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	reply := new(dns.Msg)
	reply.SetReply(r)
	reply.Authoritative = true

	if len(r.Question) != 1 {
		reply.Rcode = dns.RcodeNameError
		_ = w.WriteMsg(reply)
		return
	}

	question := r.Question[0]
	answer := d.Dispatch(Query{Name: question.Name, Type: question.Qtype})
	if answer.Status != StatusOK {
		reply.Rcode = dns.RcodeNameError
		_ = w.WriteMsg(reply)
		return
	}

	reply.Answer = []dns.RR{&dns.TXT{
		Hdr: dns.RR_Header{
			Name:   question.Name,
			Rrtype: dns.TypeTXT,
			Class:  dns.ClassINET,
			Ttl:    DefaultTTL,
		},
		Txt: []string{answer.Payload},
	}}
	_ = w.WriteMsg(reply)
}

var _ dns.Handler = &Dispatcher{}
