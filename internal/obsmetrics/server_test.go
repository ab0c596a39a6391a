// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package obsmetrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestServer_Metrics(t *testing.T) {
	defer goleak.VerifyNone(t)
	server := NewServer("127.0.0.1:0", func() bool { return true })

	if err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	}()

	addr := server.Addr()
	if addr == "" {
		t.Fatal("server address is empty")
	}

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("failed to GET /metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	bodyStr := string(body)
	if !strings.Contains(bodyStr, "go_") {
		t.Error("expected go_* metrics")
	}
	if !strings.Contains(bodyStr, "process_") {
		t.Error("expected process_* metrics")
	}

	metrics := server.Metrics()
	metrics.ParsesTotal.WithLabelValues("clean").Inc()
	metrics.RecoveredErrorsTotal.WithLabelValues("syntactic").Inc()

	resp2, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("failed to GET /metrics (second request): %v", err)
	}
	defer func() { _ = resp2.Body.Close() }()

	body2, err := io.ReadAll(resp2.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	bodyStr2 := string(body2)
	if !strings.Contains(bodyStr2, "cedarcst_parses_total") {
		t.Error("expected cedarcst_parses_total in metrics output")
	}
	if !strings.Contains(bodyStr2, "cedarcst_recovered_errors_total") {
		t.Error("expected cedarcst_recovered_errors_total in metrics output")
	}
}

func TestServer_Healthz(t *testing.T) {
	defer goleak.VerifyNone(t)
	ready := false
	server := NewServer("127.0.0.1:0", func() bool { return ready })

	if err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	}()

	addr := server.Addr()

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("failed to GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while not ready, got %d", resp.StatusCode)
	}

	ready = true
	resp2, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("failed to GET /healthz: %v", err)
	}
	_ = resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("expected 200 once ready, got %d", resp2.StatusCode)
	}
}
