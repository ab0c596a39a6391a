// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package obslog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("cedarparse", "1.0.0", "json", &buf)

	logger.Info("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}

	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want 'test message'", entry["msg"])
	}
	if entry["service"] != "cedarparse" {
		t.Errorf("service = %v, want 'cedarparse'", entry["service"])
	}
	if entry["version"] != "1.0.0" {
		t.Errorf("version = %v, want '1.0.0'", entry["version"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("time field missing")
	}
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("cedarparse", "1.0.0", "text", &buf)

	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Output missing message: %s", output)
	}
	if !strings.Contains(output, "cedarparse") {
		t.Errorf("Output missing service: %s", output)
	}
}

func TestHandler_SourceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("cedarparse", "1.0.0", "json", &buf)

	ctx := WithSource(context.Background(), "policy.cedar")
	logger.InfoContext(ctx, "parsed policy")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if entry["source"] != "policy.cedar" {
		t.Errorf("source = %v, want 'policy.cedar'", entry["source"])
	}
}

func TestHandler_NoSourceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("cedarparse", "1.0.0", "json", &buf)

	logger.Info("no source message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if _, ok := entry["source"]; ok {
		t.Errorf("source should be absent, got %v", entry["source"])
	}
}

func TestSetup_DefaultFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("cedarparse", "1.0.0", "", &buf)

	logger.Info("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Default format should be JSON, failed to parse: %v", err)
	}
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	SetDefault("test-service", "2.0.0", "json")

	if slog.Default() == original {
		t.Error("SetDefault did not change the default logger")
	}
}
