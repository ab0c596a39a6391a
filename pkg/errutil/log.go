// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package errutil

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/cedarcst/reporter"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}

// LogRecoveryRecord logs a single reporter.RecoveryRecord as structured
// fields (kind, position, message) rather than falling back to
// LogError's generic "error" string branch: a RecoveryRecord already
// carries exactly the fields a diagnostic needs, so there is no reason
// to flatten it to a string first and lose them.
func LogRecoveryRecord(logger *slog.Logger, msg string, rec reporter.RecoveryRecord) {
	logger.Error(msg,
		"kind", rec.Kind.String(),
		"line", rec.Start.Line,
		"column", rec.Start.Column,
		"message", rec.Message,
	)
}
