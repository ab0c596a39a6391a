// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/cedarcst/reporter"
)

// AssertErrorCode asserts that err is an oops error with the given code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

// AssertErrorContext asserts that err is an oops error with the given context key/value.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	assert.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}

// AssertRecoveryKind asserts that sink recorded at least one entry of
// the given reporter.Kind. Tests that only care whether a particular
// failure category fired (lexical vs. syntactic vs. recovered) use
// this instead of indexing into Records() and comparing Kind by hand.
func AssertRecoveryKind(t *testing.T, sink interface{ Records() []reporter.RecoveryRecord }, kind reporter.Kind) {
	t.Helper()
	for _, rec := range sink.Records() {
		if rec.Kind == kind {
			return
		}
	}
	require.Fail(t, "no recovery record of the expected kind", "kind %s not found in %d record(s)", kind, len(sink.Records()))
}
