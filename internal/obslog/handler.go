// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package obslog provides structured logging for cedarparse, attaching
// the service/version identity every log line carries plus, where a
// caller has one, the name of the policy source being processed.
package obslog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// WithSource returns a context carrying the name of the policy source
// being parsed (a file path for `parse`, the request's ?name= query
// parameter for `serve`), so a handler logging through that context
// tags every line with which input it came from without threading the
// name through every call by hand.
func WithSource(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKey{}, name)
}

func sourceFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxKey{}).(string)
	return name, ok && name != ""
}

// sourceHandler wraps a slog.Handler to add cedarparse's own identity
// attrs to every record, plus the source name stashed in the record's
// context by WithSource, if any.
type sourceHandler struct {
	handler slog.Handler
	service string
	version string
}

func (h *sourceHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)
	if name, ok := sourceFromContext(ctx); ok {
		r.AddAttrs(slog.String("source", name))
	}
	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

func (h *sourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *sourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
	}
}

func (h *sourceHandler) WithGroup(name string) slog.Handler {
	return &sourceHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	if format == "text" {
		baseHandler = slog.NewTextHandler(w, opts)
	} else {
		baseHandler = slog.NewJSONHandler(w, opts)
	}

	handler := &sourceHandler{
		handler: baseHandler,
		service: service,
		version: version,
	}

	return slog.New(handler)
}

// SetDefault sets up and configures the default logger.
func SetDefault(service, version, format string) {
	logger := Setup(service, version, format, nil)
	slog.SetDefault(logger)
}
