// Package server is the browser front end: an upload panel, an example
// button, and the table and profile report for the resolved dataset.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
	"github.com/vincentngwk/GIT-ML-DS/internal/report"
	"github.com/vincentngwk/GIT-ML-DS/internal/session"
	"github.com/vincentngwk/GIT-ML-DS/internal/widget"
)

// Options configures the server.
type Options struct {
	Addr           string
	BasePath       string
	MaxUploadBytes int64
	TableMaxRows   int
	SessionTTL     time.Duration
	ExampleSeed    uint64
	ExampleCSVURL  string
	// Parse overrides how uploads are parsed; nil uses the parser registry.
	Parse session.ParseFunc
}

// Server wires sessions, the input resolver and the report orchestrator to
// HTTP routes.
type Server struct {
	opt      Options
	store    *session.Store
	resolver *session.Resolver
	orch     *report.Orchestrator
	metrics  *Metrics
	router   chi.Router
}

// New builds a server that profiles with profiler.
func New(opt Options, profiler analysis.Profiler) *Server {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = 200 << 20
	}
	opt.BasePath = strings.TrimRight(opt.BasePath, "/")

	s := &Server{opt: opt}
	s.store = session.NewStore(opt.SessionTTL)
	s.metrics = NewMetrics(s.store.Len)
	s.orch = report.New(profiler, widget.HTML{},
		report.WithTableRows(opt.TableMaxRows),
		report.WithObserver(s.metrics.ObserveProfile),
	)
	ropts := []session.ResolverOption{
		session.WithSeed(opt.ExampleSeed),
		session.WithInvalidate(s.orch.Forget),
	}
	if opt.Parse != nil {
		ropts = append(ropts, session.WithParser(opt.Parse))
	}
	s.resolver = session.NewResolver(ropts...)
	s.store.OnEvict(s.resolver.Forget)

	mux := chi.NewRouter()
	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	if opt.BasePath != "" {
		mux.Route(opt.BasePath, s.routes)
		mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, opt.BasePath+"/", http.StatusFound)
		})
	} else {
		s.routes(mux)
	}
	s.router = mux
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store exposes the session store.
func (s *Server) Store() *session.Store { return s.store }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.store.StartSweeper(); err != nil {
		return err
	}
	defer s.store.StopSweeper()

	srv := &http.Server{
		Addr:              s.opt.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", s.opt.Addr, "base_path", s.opt.BasePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes(r chi.Router) {
	health := NewHealthController(s.store)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.index)
		r.Post("/upload", s.upload)
		r.Post("/example", s.example)
		r.Post("/reset", s.reset)

		r.Route("/api", func(r chi.Router) {
			r.Use(apiCORS())
			r.Get("/state", s.state)
			r.Get("/report", s.reportAPI)
			r.Get("/table", s.table)
		})
	})
}
