// SPDX-License-Identifier: GPL-3.0-or-later

// Command dnsfs-client fetches a file over DNS TXT queries and writes
// the verified bytes to disk.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/bassosimone/dnsfs"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	server := pflag.String("server", "127.0.0.1:5353", "server endpoint (ip:port)")
	zone := pflag.String("zone", dnsfs.DefaultZone, "zone suffix to query under")
	transport := pflag.String("transport", "udp", "transport: udp, tcp, tls, or quic")
	serverName := pflag.String("tls-server-name", "", "server name for tls/quic verification")
	timeout := pflag.Duration("timeout", dnsfs.DefaultQueryTimeout, "per-query timeout")
	output := pflag.String("output", "", "output path (default retrieved_<name>.bin)")
	concurrency := pflag.Int("concurrency", 1, "concurrent chunk queries (1 = sequential)")
	verbose := pflag.Bool("verbose", false, "log every query")
	pflag.Parse()

	if pflag.NArg() != 1 {
		return fmt.Errorf("usage: dnsfs-client [flags] <name>")
	}
	name := pflag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	endpoint, err := netip.ParseAddrPort(*server)
	if err != nil {
		return err
	}
	dt, err := newTransport(*transport, *serverName, endpoint)
	if err != nil {
		return err
	}

	fetcher := &dnsfs.Fetcher{
		Transport:    dt,
		Zone:         *zone,
		QueryTimeout: *timeout,
		Concurrency:  *concurrency,
		Logger:       logger,
	}

	started := time.Now()
	data, err := fetcher.Fetch(context.Background(), name)
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = fmt.Sprintf("retrieved_%s.bin", name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	logger.Info("dnsfs: wrote file",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// newTransport builds the [dnsfs.Transport] selected by name.
func newTransport(name, serverName string, endpoint netip.AddrPort) (dnsfs.Transport, error) {
	switch name {
	case "udp":
		return dnsfs.NewUDPTransport(endpoint), nil
	case "tcp":
		return dnsfs.NewTransportTCP(&net.Dialer{}, endpoint), nil
	case "tls":
		return dnsfs.NewTransportTLS(dnsfs.NewTLSDialerDNSOverTLS(serverName), endpoint), nil
	case "quic":
		pconn, err := net.ListenPacket("udp", ":0")
		if err != nil {
			return nil, err
		}
		dialer := dnsfs.NewQUICDialer(pconn, serverName)
		return dnsfs.NewTransportQUIC(dialer, endpoint), nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", name)
	}
}
