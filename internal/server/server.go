// Package server hosts the defended endpoints: the serialized counter,
// the escaped comment echo and the confined file reader.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tckz/go-vuln-defense/internal/counter"
	"github.com/tckz/go-vuln-defense/internal/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxFormBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	// Counter backs GET /escrever.
	Counter counter.Counter
	// DedupTTL is how long an Idempotency-Key is remembered. 0 disables replay.
	DedupTTL time.Duration
	// BaseDir is the only directory GET /abrir reads from.
	BaseDir string

	Metrics *Metrics
	Logger  *zap.Logger
}

type Server struct {
	counter *counter.Dedup
	baseDir string
	metrics *Metrics
	logger  *zap.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Counter == nil {
		return nil, errors.New("server: Counter is required")
	}
	if cfg.BaseDir == "" {
		return nil, errors.New("server: BaseDir is required")
	}
	m := cfg.Metrics
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Server{
		counter: counter.NewDedup(cfg.Counter, cfg.DedupTTL),
		baseDir: cfg.BaseDir,
		metrics: m,
		logger:  log.OrNop(cfg.Logger),
	}, nil
}

func (s *Server) handle(name string, h handlerFunc) http.Handler {
	return s.metrics.instrument(name, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}))
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /escrever", s.handle("escrever", s.handleIncrement))
	mux.Handle("POST /comentario", s.handle("comentario", s.handleComment))
	mux.Handle("GET /abrir", s.handle("abrir", s.handleOpen))
	mux.Handle("GET /metrics", s.metrics.Handler())

	return s.withRequestLog(mux)
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("net.Listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.Serve: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})
	return eg.Wait()
}
