// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package reporter_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/cedarcst/pkg/errutil"
	"github.com/holomush/cedarcst/reporter"
)

func TestHandler_EmptyByDefault(t *testing.T) {
	h := reporter.NewHandler()
	assert.True(t, h.Empty())
	assert.Nil(t, h.Err())
	assert.Empty(t, h.Records())
}

func TestHandler_ReportAccumulates(t *testing.T) {
	h := reporter.NewHandler()
	h.Report(reporter.RecoveryRecord{Kind: reporter.Syntactic, Message: "expected ;"})
	h.Report(reporter.RecoveryRecord{Kind: reporter.Lexical, Message: "bad byte"})

	assert.False(t, h.Empty())
	require.Len(t, h.Records(), 2)
	assert.Equal(t, "expected ;", h.Records()[0].Message)
}

func TestHandler_ErrWrapsFirstRecord(t *testing.T) {
	h := reporter.NewHandler()
	h.Report(reporter.RecoveryRecord{
		Kind:    reporter.Syntactic,
		Start:   lexer.Position{Line: 3, Column: 5},
		Message: "expected an expression",
	})
	h.Report(reporter.RecoveryRecord{Kind: reporter.Lexical, Message: "bad byte"})

	err := h.Err()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "parse_failed")
	assert.Contains(t, err.Error(), "2 parse error(s)")
}

func TestHandler_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := reporter.NewHandler(reporter.WithLogger(logger))
	h.Report(reporter.RecoveryRecord{Kind: reporter.Numeric, Message: "literal out of range"})

	assert.Contains(t, buf.String(), "literal out of range")
	assert.Contains(t, buf.String(), "numeric")
}

func TestHandler_AssertRecoveryKind(t *testing.T) {
	h := reporter.NewHandler()
	h.Report(reporter.RecoveryRecord{Kind: reporter.Lexical, Message: "bad byte"})
	h.Report(reporter.RecoveryRecord{Kind: reporter.Recovered, Message: "recovered at policy boundary"})

	errutil.AssertRecoveryKind(t, h, reporter.Recovered)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "lexical", reporter.Lexical.String())
	assert.Equal(t, "syntactic", reporter.Syntactic.String())
	assert.Equal(t, "numeric", reporter.Numeric.String())
	assert.Equal(t, "recovered", reporter.Recovered.String())
}

func TestRecoveryRecord_Error(t *testing.T) {
	rec := reporter.RecoveryRecord{
		Kind:    reporter.Syntactic,
		Start:   lexer.Position{Line: 2, Column: 7},
		Message: "expected )",
	}
	assert.Equal(t, "syntactic:2:7: expected )", rec.Error())
}
