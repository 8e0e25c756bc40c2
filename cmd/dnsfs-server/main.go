// SPDX-License-Identifier: GPL-3.0-or-later

// Command dnsfs-server serves a store directory over DNS TXT queries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

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
	listen := pflag.String("listen", "127.0.0.1:5353", "address to bind (ip:port)")
	zone := pflag.String("zone", dnsfs.DefaultZone, "zone suffix to serve")
	store := pflag.String("store", "store", "store directory")
	width := pflag.Int("chunk-width", dnsfs.DefaultChunkWidth, "maximum chunk width in base64 characters")
	verbose := pflag.Bool("verbose", false, "log every query")
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	storage := dnsfs.NewDirStorage(*store)
	if err := storage.Ensure(); err != nil {
		return err
	}

	dispatcher := &dnsfs.Dispatcher{
		Storage:    storage,
		Zone:       *zone,
		ChunkWidth: *width,
		Logger:     logger,
	}
	server := dnsfs.NewServer(dispatcher, logger)
	if err := server.Start(*listen); err != nil {
		return err
	}
	defer server.Close()
	logger.Info("dnsfs: store directory", slog.String("path", *store))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("dnsfs: shutting down")
	return nil
}
