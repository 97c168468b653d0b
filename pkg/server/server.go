// Package server exposes recalculation and diagram storage over HTTP.
//
// # Endpoints
//
//	GET    /healthz                     liveness and build version
//	POST   /v1/recalc                   replay events on a posted document
//	GET    /v1/diagrams                 list stored diagram ids
//	GET    /v1/diagrams/{id}            fetch a diagram (?format=json|dot|svg)
//	PUT    /v1/diagrams/{id}            store a diagram
//	DELETE /v1/diagrams/{id}            remove a diagram
//	POST   /v1/diagrams/{id}/events     replay events on a stored diagram and persist
//
// Requests and responses are JSON. Errors carry the code of the underlying
// [relerrors.Error]:
//
//	{"error": {"code": "UNKNOWN_ENTITY", "message": "event 0 (move): UNKNOWN_ENTITY: no entity \"Z\": ..."}}
//
// Replays on the same stored diagram are serialized; different diagrams
// proceed in parallel.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/relink/pkg/pipeline"
	"github.com/matzehuels/relink/pkg/storage"
)

// Config configures the HTTP server.
type Config struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	storage storage.Store
	logger  *log.Logger
	router  chi.Router

	locks sync.Map // diagram id -> *sync.Mutex

	configHash string
}

// Option configures a Server.
type Option func(*Server)

// WithConfigHash scopes cached replays to the engine configuration that
// produced them. Servers with different layout settings sharing one cache
// never see each other's results.
func WithConfigHash(hash string) Option {
	return func(s *Server) { s.configHash = hash }
}

// New creates a server. A nil logger uses log.Default(); a nil store keeps
// diagrams in memory.
func New(cfg Config, runner *pipeline.Runner, st storage.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if st == nil {
		st = storage.NewMemoryStore()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, logger)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	s := &Server{cfg: cfg, runner: runner, storage: st, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/recalc", s.handleRecalc)
		r.Route("/diagrams", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Put("/", s.handlePut)
				r.Delete("/", s.handleDelete)
				r.Post("/events", s.handleEvents)
			})
		})
	})
	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return DefaultConfig().WriteTimeout
}

// lock serializes writers of one diagram.
func (s *Server) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	}
}
