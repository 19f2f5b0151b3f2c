// Package server exposes the explorer, search, repository annotation, and
// transfer queue over a small JSON HTTP API. Operational endpoints (health checks, prometheus
// metrics) live on a separate backplane listener so they are never exposed
// alongside the API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	metricsprom "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
	"golang.org/x/sync/errgroup"

	"github.com/noh-rs/nohrs/explorer"
	"github.com/noh-rs/nohrs/search"
	"github.com/noh-rs/nohrs/transfer"
)

// Config wires the server's dependencies. Explorer is required; nil Engine
// or Queue disable the corresponding endpoints with 404s left to the mux.
type Config struct {
	Addr        string
	MetricsAddr string

	Explorer *explorer.Explorer
	Engine   *search.Engine
	Queue    *transfer.Queue

	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// Server serves the API and backplane listeners.
type Server struct {
	addr        string
	metricsAddr string

	explorer *explorer.Explorer
	engine   *search.Engine
	queue    *transfer.Queue

	logger   *slog.Logger
	registry *prometheus.Registry
}

// New builds a server from cfg, filling in defaults for the listen
// addresses, logger, and metrics registry.
func New(cfg Config) *Server {
	s := &Server{
		addr:        cfg.Addr,
		metricsAddr: cfg.MetricsAddr,
		explorer:    cfg.Explorer,
		engine:      cfg.Engine,
		queue:       cfg.Queue,
		logger:      cfg.Logger,
		registry:    cfg.Registry,
	}
	if s.addr == "" {
		s.addr = ":8080"
	}
	if s.metricsAddr == "" {
		s.metricsAddr = ":9102"
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector())
		s.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return s
}

// Registry returns the metrics registry so other components (the cache)
// can register their collectors on it.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler returns the API handler with request metrics middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/list", s.handleList)
	mux.HandleFunc("GET /api/stat", s.handleStat)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("GET /api/repo", s.handleRepo)
	if s.engine != nil {
		mux.HandleFunc("GET /api/search", s.handleSearch)
	}
	if s.queue != nil {
		mux.HandleFunc("POST /api/transfer", s.handleTransferCreate)
		mux.HandleFunc("GET /api/transfer/{id}", s.handleTransferStatus)
	}

	mdlw := middleware.New(middleware.Config{
		Recorder: metricsprom.NewRecorder(metricsprom.Config{Registry: s.registry}),
	})
	return std.Handler("", mdlw, mux)
}

// Backplane returns the operational handler: liveness, readiness, and the
// prometheus scrape endpoint.
func (s *Server) Backplane() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz/alive", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/healthz/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// handleReady reports ready once the initial index build has finished, so
// load balancers do not route search traffic to a cold instance.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.engine != nil && s.engine.Progress() < 1 {
		http.Error(w, "indexing", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ListenAndServe runs both listeners until ctx is canceled, then shuts them
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	api := &http.Server{Addr: s.addr, Handler: s.Handler()}
	backplane := &http.Server{Addr: s.metricsAddr, Handler: s.Backplane()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("api listening", "addr", s.addr)
		if err := api.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.logger.Info("backplane listening", "addr", s.metricsAddr)
		if err := backplane.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = backplane.Shutdown(shutdownCtx)
		return api.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
