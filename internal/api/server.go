// Package api serves districting plans over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /v1/datasets
//	POST   /v1/plans
//	GET    /v1/plans
//	GET    /v1/plans/{id}
//	GET    /v1/plans/{id}/stats
//	DELETE /v1/plans/{id}
//
// Plans are drawn through a [pipeline.Runner], so identical requests are
// served from the plan cache, and persisted in a [store.Store].
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mapdraw/pkg/pipeline"
	"github.com/matzehuels/mapdraw/pkg/store"
)

// DefaultMaxBodyBytes limits the size of a POST /v1/plans body.
const DefaultMaxBodyBytes = 32 << 20

// Config holds the dependencies of a Server.
type Config struct {
	Runner       *pipeline.Runner
	Store        store.Store
	DatasetDir   string
	Logger       *log.Logger
	MaxBodyBytes int64
	DrawTimeout  time.Duration // 0 means no limit beyond the request context
}

// Server is the HTTP API.
type Server struct {
	runner       *pipeline.Runner
	store        store.Store
	datasetDir   string
	logger       *log.Logger
	maxBodyBytes int64
	drawTimeout  time.Duration
}

// New creates a Server. A nil Runner gets an uncached runner, and a nil
// Store gets a memory store.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	st := cfg.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Server{
		runner:       runner,
		store:        st,
		datasetDir:   cfg.DatasetDir,
		logger:       logger,
		maxBodyBytes: maxBody,
		drawTimeout:  cfg.DrawTimeout,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/datasets", s.listDatasets)
		r.Post("/plans", s.createPlan)
		r.Get("/plans", s.listPlans)
		r.Get("/plans/{id}", s.getPlan)
		r.Delete("/plans/{id}", s.deletePlan)
		r.Get("/plans/{id}/stats", s.planStats)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
