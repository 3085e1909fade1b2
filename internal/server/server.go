// Package server exposes the graph pipeline over HTTP.
//
// The server is bound to one graph source (a CARET architecture YAML or a
// rosgraph.dot export) and serves the imported, filtered and laid-out graph
// as JSON, plus DOT/SVG exports, named path listings and stored snapshots.
// Prometheus metrics are exposed on /metrics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/observability"
	"github.com/okanda/rosviz/pkg/pipeline"
	"github.com/okanda/rosviz/pkg/store"
)

// Config holds server construction options.
type Config struct {
	// Source is the graph file every request operates on.
	Source string

	// TargetPath restricts CARET imports to one named path.
	TargetPath string

	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// Server wires the pipeline runner, snapshot store and metrics behind a
// chi router.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	store   store.Store
	metrics *Metrics
	logger  *log.Logger
	router  chi.Router
}

// New creates a server. A nil store disables the snapshot endpoints; a nil
// logger falls back to the default logger.
func New(cfg Config, runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		store:   st,
		metrics: NewMetrics(),
		logger:  logger,
	}
	s.router = s.routes()

	// Route pipeline and cache events into Prometheus.
	observability.SetPipelineHooks(s.metrics)
	observability.SetCacheHooks(s.metrics)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "source", s.cfg.Source)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/layout", s.handleLayout)
		r.Get("/paths", s.handlePaths)
		r.Get("/nodes/*", s.handleNode)
		r.Get("/export/dot", s.handleExportDOT)
		r.Get("/export/svg", s.handleExportSVG)

		if s.store != nil {
			r.Route("/snapshots", func(r chi.Router) {
				r.Get("/", s.handleSnapshotList)
				r.Post("/", s.handleSnapshotCreate)
				r.Get("/{id}", s.handleSnapshotGet)
				r.Delete("/{id}", s.handleSnapshotDelete)
			})
		}
	})

	return r
}

// instrument records request counts, latency and in-flight gauge.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.Status())
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).
			Observe(time.Since(start).Seconds())
	})
}

// pipelineOptions builds pipeline options from the configured source plus
// per-request query parameters.
func (s *Server) pipelineOptions(r *http.Request) pipeline.Options {
	q := r.URL.Query()
	return pipeline.Options{
		Source:     s.cfg.Source,
		TargetPath: s.cfg.TargetPath,
		NoFilter:   q.Get("no_filter") == "true",
		Displace:   q.Get("displace") == "true",
		Refresh:    q.Get("refresh") == "true",
		Align:      q.Get("align") == "true",
		Logger:     s.logger,
	}
}

// ===== Response helpers =====

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	var resp errorResponse
	resp.Error.Code = string(code)
	resp.Error.Message = errors.UserMessage(err)
	s.writeJSON(w, statusFor(code), resp)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodePathNotFound,
		errors.ErrCodeNodeNotFound, errors.ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidSettings,
		errors.ErrCodeInvalidPattern, errors.ErrCodeInvalidGraph:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
