// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/miekg/dns"
)

// Server binds a [*Dispatcher] to UDP and TCP listeners on the same
// address, plus an optional TLS listener.
//
// Construct using [NewServer], then call [*Server.Start].
type Server struct {
	// Dispatcher answers the queries.
	//
	// Set by [NewServer] to the user-provided value.
	dispatcher *Dispatcher

	// logger is used for structured logging.
	logger *slog.Logger

	// pconn is the UDP listener, set by [*Server.Start].
	pconn net.PacketConn

	// tlsAddr is the TLS listening address, set by [*Server.StartTLS].
	tlsAddr string

	// servers are the running [*dns.Server] instances.
	servers []*dns.Server
}

// NewServer creates a new [*Server] for the given dispatcher. A nil
// logger means [slog.Default].
func NewServer(dispatcher *Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{dispatcher: dispatcher, logger: logger}
}

// Start binds UDP and TCP listeners on addr (for example
// "127.0.0.1:5353") and serves queries until [*Server.Close]. When
// addr requests an ephemeral port, the TCP listener reuses the port
// chosen for UDP; use [*Server.Address] to discover it.
func (s *Server) Start(addr string) error {
	pconn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", pconn.LocalAddr().String())
	if err != nil {
		pconn.Close()
		return err
	}

	s.pconn = pconn
	if err := s.serve(&dns.Server{PacketConn: pconn, Handler: s.dispatcher}, "udp"); err != nil {
		return err
	}
	if err := s.serve(&dns.Server{Listener: listener, Handler: s.dispatcher}, "tcp"); err != nil {
		return err
	}
	s.logger.Info("dnsfs: serving",
		slog.String("address", pconn.LocalAddr().String()),
		slog.String("zone", s.dispatcher.zone()),
	)
	return nil
}

// StartTLS additionally binds a DNS-over-TLS listener on addr using
// the given TLS configuration.
func (s *Server) StartTLS(addr string, config *tls.Config) error {
	listener, err := tls.Listen("tcp", addr, config)
	if err != nil {
		return err
	}
	s.tlsAddr = listener.Addr().String()
	if err := s.serve(&dns.Server{Listener: listener, Handler: s.dispatcher}, "tls"); err != nil {
		return err
	}
	s.logger.Info("dnsfs: serving TLS",
		slog.String("address", listener.Addr().String()),
	)
	return nil
}

// serve runs srv in the background and waits for it to report
// started, so a prompt [*Server.Close] cannot race the serve loop.
func (s *Server) serve(srv *dns.Server, network string) error {
	started := make(chan struct{})
	srv.NotifyStartedFunc = func() { close(started) }
	stopped := make(chan error, 1)

	s.servers = append(s.servers, srv)
	go func() {
		err := srv.ActivateAndServe()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("dnsfs: server stopped",
				slog.String("network", network),
				slog.Any("err", err),
			)
		}
		stopped <- err
	}()

	select {
	case <-started:
		return nil
	case err := <-stopped:
		if err == nil {
			err = fmt.Errorf("dnsfs: %s server stopped before starting", network)
		}
		return err
	}
}

// Address returns the UDP listening address after [*Server.Start].
func (s *Server) Address() string {
	return s.pconn.LocalAddr().String()
}

// TLSAddress returns the TLS listening address after
// [*Server.StartTLS].
func (s *Server) TLSAddress() string {
	return s.tlsAddr
}

// Close shuts every listener down.
func (s *Server) Close() error {
	var errs []error
	for _, srv := range s.servers {
		errs = append(errs, srv.Shutdown())
	}
	return errors.Join(errs...)
}
