// Package server runs beagle's HTTP listeners (preview, live reload, metrics).
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	smw "github.com/whatisjasongoldstein/beagle/internal/server/middleware"
)

// Listener is one named HTTP endpoint.
type Listener struct {
	Name    string
	Addr    string
	Handler http.Handler
}

// Server owns a set of listeners that start and stop together.
type Server struct {
	listeners []Listener
	logger    *slog.Logger
	mchain    func(http.Handler) http.Handler

	mu      sync.Mutex
	servers []*http.Server
	addrs   map[string]string
	errc    chan error
}

// New wraps every listener's handler with the logging and recovery chain.
// observe, when set, receives the status code of every request.
func New(logger *slog.Logger, observe smw.StatusObserver, listeners ...Listener) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		listeners: listeners,
		logger:    logger,
		mchain:    smw.Chain(logger, observe),
		addrs:     map[string]string{},
		errc:      make(chan error, len(listeners)),
	}
}

// Start pre-binds every address, failing fast with an aggregate error before
// any server begins serving, then serves each listener in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	lns := make([]net.Listener, len(s.listeners))
	var bindErrs []error
	for i, l := range s.listeners {
		ln, err := lc.Listen(ctx, "tcp", l.Addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s %s: %w", l.Name, l.Addr, err))
			continue
		}
		lns[i] = ln
	}
	if len(bindErrs) > 0 {
		for _, ln := range lns {
			if ln != nil {
				_ = ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", stderrors.Join(bindErrs...))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		srv := &http.Server{
			Handler:           s.mchain(l.Handler),
			ReadHeaderTimeout: 10 * time.Second,
		}
		s.servers = append(s.servers, srv)
		s.addrs[l.Name] = lns[i].Addr().String()
		go func(name string, ln net.Listener) {
			if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server failed", slog.String("server", name), slog.String("error", err.Error()))
				s.errc <- fmt.Errorf("%s server: %w", name, err)
			}
		}(l.Name, lns[i])
		s.logger.Info("HTTP server listening", slog.String("server", l.Name), slog.String("addr", s.addrs[l.Name]))
	}
	return nil
}

// Addr returns the bound address of the named listener (useful with ":0").
func (s *Server) Addr(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addrs[name]
}

// Errors reports listeners that stopped serving unexpectedly.
func (s *Server) Errors() <-chan error { return s.errc }

// Stop gracefully shuts listeners down in order: the first listener (the
// preview) goes first.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	servers := s.servers
	s.servers = nil
	s.mu.Unlock()

	var errs []error
	for i, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", s.listeners[i].Name, err))
		}
	}
	return stderrors.Join(errs...)
}
