// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package reporter is the Error Sink: a caller-supplied collector that
// receives structured recovery records without aborting the parse.
//
// The record shape follows kralicky/protocompile's reporter/errors.go
// (ErrorWithPos carrying a position and a message); the aggregate
// error returned once parsing is done follows the teacher's
// dsl.Parse, which wraps the underlying parser error with
// github.com/samber/oops rather than returning a bare error.
package reporter

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// Kind discriminates the four error categories the spec's Error
// Handling Design section names.
type Kind int

const (
	// Lexical: unrecognized character or unterminated string, reported
	// by the lexer with a single-byte span.
	Lexical Kind = iota
	// Syntactic: unexpected token at a reduction point.
	Syntactic
	// Numeric: an integer literal out of u64 range.
	Numeric
	// Recovered: a syntactic error at a declared recovery point;
	// parsing continued past it.
	Recovered
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntactic"
	case Numeric:
		return "numeric"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// RecoveryRecord is one entry appended to the sink: a lexical,
// syntactic, numeric, or recovered error. Expected carries the set of
// expected token classes when the parser engine required one specific
// token and found another (e.g. a missing ')' or '}'); it is empty for
// every other record. This gives a downstream
// diagnostic renderer — out of scope for this core — has what it needs
// without re-deriving it.
type RecoveryRecord struct {
	Kind     Kind
	Start    lexer.Position
	End      lexer.Position
	Message  string
	Expected []string
}

func (r RecoveryRecord) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", r.Kind, r.Start.Line, r.Start.Column, r.Message)
}

// Sink is the Error Sink interface the Grammar Engine reports into. A
// fresh Sink is supplied per parse call; the parser holds no
// process-wide state of its own.
type Sink interface {
	Report(rec RecoveryRecord)
	Records() []RecoveryRecord
}

// Handler is the concrete Sink carried through this module's ambient
// stack. It only ever accumulates; nothing about receiving a record
// aborts the parse that produced it.
type Handler struct {
	records []RecoveryRecord
	logger  *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger mirrors every reported record to logger at warn level,
// the same way the teacher's errutil.LogError surfaces oops errors
// through structured logging instead of only returning them.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler returns an empty Handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Report appends rec to the sink and, if a logger was configured,
// mirrors it as a structured warning.
func (h *Handler) Report(rec RecoveryRecord) {
	h.records = append(h.records, rec)
	if h.logger != nil {
		h.logger.Warn("cedar parse error",
			slog.String("kind", rec.Kind.String()),
			slog.Int("line", rec.Start.Line),
			slog.Int("column", rec.Start.Column),
			slog.String("message", rec.Message),
		)
	}
}

// Records returns every record appended so far, in the order the
// parser encountered them.
func (h *Handler) Records() []RecoveryRecord { return h.records }

// Empty reports whether the sink received no records: the returned
// CST is a faithful parse of the input start to finish.
func (h *Handler) Empty() bool { return len(h.records) == 0 }

// Err returns nil when the sink is empty, or an oops-coded error
// summarizing the recorded count otherwise. Following the teacher's
// convention, this wraps rather than replaces the underlying detail:
// callers that need the individual records still use Records.
func (h *Handler) Err() error {
	if h.Empty() {
		return nil
	}
	first := h.records[0]
	return oops.
		Code("parse_failed").
		With("error_count", len(h.records)).
		With("first_line", first.Start.Line).
		With("first_column", first.Start.Column).
		Errorf("cedar policy source had %d parse error(s): %s", len(h.records), first.Message)
}
