// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/cedarcst/internal/obslog"
	"github.com/holomush/cedarcst/internal/obsmetrics"
	"github.com/holomush/cedarcst/parser"
	"github.com/holomush/cedarcst/reporter"
	"github.com/holomush/cedarcst/source"
)

type serveConfig struct {
	metricsAddr string
	parseAddr   string
}

// NewServeCmd creates the `serve` subcommand: a small HTTP service
// exposing Cedar parsing over POST /v1/parse, with /metrics and
// /healthz served by internal/obsmetrics alongside it.
func NewServeCmd() *cobra.Command {
	sc := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Cedar policy parsing over HTTP, with Prometheus metrics and health probes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd, cfg, sc)
		},
	}

	cmd.Flags().StringVar(&sc.metricsAddr, "metrics-addr", ":9090", "address to serve /metrics and /healthz on")
	cmd.Flags().StringVar(&sc.parseAddr, "parse-addr", ":8080", "address to serve POST /v1/parse on")

	return cmd
}

func runServe(cmd *cobra.Command, cfg Config, sc *serveConfig) error {
	ready := false
	obs := obsmetrics.NewServer(sc.metricsAddr, func() bool { return ready })
	if err := obs.Start(); err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").With("addr", sc.metricsAddr).Wrap(err)
	}

	handler := &parseHandler{cfg: cfg, metrics: obs.Metrics()}
	mux := http.NewServeMux()
	mux.Handle("/v1/parse", handler)

	parseServer := &http.Server{
		Addr:              sc.parseAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- parseServer.ListenAndServe()
	}()
	ready = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cmd.Printf("cedarparse serve: parse on %s, metrics/health on %s\n", sc.parseAddr, sc.metricsAddr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return oops.Code("PARSE_SERVER_FAILED").With("addr", sc.parseAddr).Wrap(err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = parseServer.Shutdown(shutdownCtx)
	return obs.Stop(shutdownCtx)
}

// parseHandler implements POST /v1/parse: the request body is Cedar
// policy source, the response body is the resulting CST plus any
// recovered errors, and every call is counted against ParsesTotal /
// RecoveredErrorsTotal.
type parseHandler struct {
	cfg     Config
	metrics *obsmetrics.Metrics
}

func (h *parseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	ctx := obslog.WithSource(r.Context(), name)

	src := source.New(name, string(body), h.cfg.KeepSpans)
	sink := reporter.NewHandler()

	tree := parser.New(string(body), src, sink, h.cfg.Tolerant).Parse()

	outcome := "clean"
	if !sink.Empty() {
		outcome = "recovered"
		if !h.cfg.Tolerant {
			outcome = "fatal"
		}
	}
	h.metrics.ParsesTotal.WithLabelValues(outcome).Inc()
	for _, rec := range sink.Records() {
		h.metrics.RecoveredErrorsTotal.WithLabelValues(rec.Kind.String()).Inc()
	}
	slog.Default().InfoContext(ctx, "served parse request", "outcome", outcome, "errors", len(sink.Records()))

	w.Header().Set("Content-Type", "application/json")
	if outcome == "fatal" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	enc := json.NewEncoder(w)
	_ = enc.Encode(parseResult{Policies: tree, Errors: sink.Records()})
}
