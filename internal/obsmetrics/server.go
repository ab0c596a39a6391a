// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package obsmetrics provides HTTP endpoints for metrics and health
// checks around the cedarcst parser. It is deliberately kept outside
// the core parser/lexer/cst packages, which stay callable as a plain
// library with no HTTP or Prometheus dependency of their own.
package obsmetrics

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker returns whether the service is ready to accept
// requests.
type ReadinessChecker func() bool

// Metrics contains the Prometheus metrics cedarcst exposes.
type Metrics struct {
	// ParsesTotal counts ParsePolicies calls, labeled by outcome:
	// "clean" (empty sink), "recovered" (non-empty sink, tolerant
	// mode), or "fatal" (non-empty sink, strict mode).
	ParsesTotal *prometheus.CounterVec
	// RecoveredErrorsTotal counts individual reporter.RecoveryRecord
	// entries across all parses, labeled by kind.
	RecoveredErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers cedarcst's custom metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ParsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cedarcst_parses_total",
				Help: "Total number of ParsePolicies calls by outcome",
			},
			[]string{"outcome"},
		),
		RecoveredErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cedarcst_recovered_errors_total",
				Help: "Total number of recovery records appended to the sink, by kind",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(m.ParsesTotal)
	reg.MustRegister(m.RecoveredErrorsTotal)

	return m
}

// Server provides HTTP endpoints for observability (metrics and health
// probes) around a running cedarparse serve process.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates a new observability server.
func NewServer(addr string, readinessChecker ReadinessChecker) *Server {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics := NewMetrics(registry)

	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  metrics,
		isReady:  readinessChecker,
	}
}

// Metrics returns the metrics for recording parse events.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start begins serving observability endpoints.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("obsmetrics server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("obsmetrics server error", "error", serveErr)
		}
	}()

	slog.Info("obsmetrics server started", "addr", listener.Addr().String())
	return nil
}

// Stop gracefully shuts down the observability server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown obsmetrics server: %w", err)
		}
	}
	s.running.Store(false)
	slog.Info("obsmetrics server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" before a
// successful Start. After Stop it still returns the last listener's
// address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.isReady == nil || s.isReady() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready\n"))
}
