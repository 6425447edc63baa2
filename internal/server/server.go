// Package server serves a generated guide with live reload.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/conneroisu/frontnote/internal/config"
	"github.com/conneroisu/frontnote/internal/livereload"
	"github.com/conneroisu/frontnote/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// PreviewServer serves the output directory, injecting the live reload
// client into HTML pages.
type PreviewServer struct {
	config *config.Config
	hub    *livereload.Hub
	logger logging.Logger

	mu         sync.RWMutex
	httpServer *http.Server
	addr       string
	lastBuild  time.Time
	lastError  error
	builds     int
}

// Option configures a PreviewServer.
type Option func(*PreviewServer)

// WithLogger sets the structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *PreviewServer) {
		if logger != nil {
			s.logger = logger.WithComponent("server")
		}
	}
}

// New creates a preview server for cfg.Out.
func New(cfg *config.Config, opts ...Option) *PreviewServer {
	s := &PreviewServer{
		config: cfg,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = livereload.NewHub(
		livereload.WithLogger(s.logger),
		livereload.WithOriginPatterns(
			fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			"localhost:*",
			"127.0.0.1:*",
		),
	)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(livereload.Path, s.hub)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleGuide)
	return s.withMiddleware(mux)
}

// Start listens on the configured address and serves until ctx is done.
func (s *PreviewServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *PreviewServer) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = server
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	url := "http://" + s.addr
	s.logger.Info(ctx, "Serving guide", "url", url, "dir", s.config.Out)
	if s.config.Server.Open {
		go s.openBrowser(ctx, url)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown disconnects live reload clients and stops the HTTP server.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	s.hub.Close()

	s.mu.RLock()
	server := s.httpServer
	s.mu.RUnlock()
	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Addr returns the address the server listens on, "" before Serve.
func (s *PreviewServer) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// NotifyBuild records the outcome of a regeneration. Successful builds
// reload every connected page.
func (s *PreviewServer) NotifyBuild(ctx context.Context, err error) {
	s.mu.Lock()
	s.lastBuild = time.Now()
	s.lastError = err
	s.builds++
	s.mu.Unlock()

	if err != nil {
		return
	}
	if err := s.hub.Reload(""); err != nil {
		s.logger.Warn(ctx, err, "Failed to broadcast reload")
		return
	}
	s.logger.Debug(ctx, "Reload broadcast", "clients", s.hub.Clients())
}

// Clients returns the number of pages connected for live reload.
func (s *PreviewServer) Clients() int {
	return s.hub.Clients()
}

func (s *PreviewServer) openBrowser(ctx context.Context, url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		s.logger.Warn(ctx, fmt.Errorf("unsupported platform %s", runtime.GOOS), "Cannot open browser")
		return
	}

	if err := cmd.Start(); err != nil {
		s.logger.Warn(ctx, err, "Failed to open browser", "url", url)
		return
	}
	go func() { _ = cmd.Wait() }()
}
