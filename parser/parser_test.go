// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/cedarcst/cst"
	"github.com/holomush/cedarcst/parser"
	"github.com/holomush/cedarcst/reporter"
	"github.com/holomush/cedarcst/source"
)

// ignoreHandle lets cmp walk into *source.Span (Start/End/Source) without
// tripping over source.Handle's unexported fields: two spans built from
// independent parses of the same text point at different Handles, so the
// handle itself is deliberately excluded from the comparison.
var ignoreHandle = cmp.Comparer(func(a, b *source.Handle) bool { return true })

func parseExpr(t *testing.T, input string) (cst.Node[cst.Expr], *reporter.Handler) {
	t.Helper()
	h := reporter.NewHandler()
	src := source.New("t.cedar", input, true)
	n := parser.ParseExpr(input, src, h)
	return n, h
}

func parsePolicies(t *testing.T, input string, tolerant bool) (cst.Node[cst.Policies], *reporter.Handler) {
	t.Helper()
	h := reporter.NewHandler()
	src := source.New("t.cedar", input, true)
	n := parser.New(input, src, h, tolerant).Parse()
	return n, h
}

// --- Invariant 1: round-trip shape — every node's span encloses its
// children's spans, and the text it covers round-trips through Slice.

func TestInvariant_SpanEnclosesChildren(t *testing.T) {
	n, h := parseExpr(t, `principal == User::"alice"`)
	require.True(t, h.Empty())
	require.True(t, n.IsSome())
	require.NotNil(t, n.Span)
	assert.Equal(t, `principal == User::"alice"`, n.Span.Text())

	or := n.Value.Or
	require.True(t, or.IsSome())
	require.NotNil(t, or.Span)
	assert.GreaterOrEqual(t, or.Span.Start, n.Span.Start)
	assert.LessOrEqual(t, or.Span.End, n.Span.End)
}

// --- Invariant 2: operator precedence.

func TestInvariant_Precedence(t *testing.T) {
	n, h := parseExpr(t, `a || b && c == d + e * -f`)
	require.True(t, h.Empty())
	require.True(t, n.IsSome())

	// Or.Initial is the 'a' And; Or.Extended has one element: the
	// '&&'-joined And for 'b && c == d + e * -f'.
	or := *n.Value.Or.Value
	require.Len(t, or.Extended, 1)

	and := *or.Extended[0].Value
	// And's Initial is 'b', Extended is ['c == d + e * -f'].
	require.Len(t, and.Extended, 1)

	rel := *and.Extended[0].Value
	require.Len(t, rel.Extended, 1)
	assert.Equal(t, cst.RelEq, rel.Extended[0].Op)

	add := *rel.Extended[0].Operand.Value
	require.Len(t, add.Extended, 1)
	assert.Equal(t, cst.AddPlus, add.Extended[0].Op)

	mult := *add.Extended[0].Operand.Value
	require.Len(t, mult.Extended, 1)
	assert.Equal(t, cst.MultStar, mult.Extended[0].Op)

	unary := *mult.Extended[0].Operand.Value
	require.NotNil(t, unary.Op)
	assert.Equal(t, cst.NegDash, unary.Op.Kind)
	assert.Equal(t, 1, unary.Op.Count)
}

// --- Invariant 3: left associativity.

func TestInvariant_LeftAssociativity(t *testing.T) {
	n, h := parseExpr(t, `a - b - c`)
	require.True(t, h.Empty())

	add := *n.Value.Or.Value.Initial.Value.Initial.Value.Initial.Value
	require.Len(t, add.Extended, 2)
	assert.Equal(t, cst.AddMinus, add.Extended[0].Op)
	assert.Equal(t, cst.AddMinus, add.Extended[1].Op)
}

func TestInvariant_LeftAssociativity_AllLevels(t *testing.T) {
	cases := []string{
		`a || b || c`,
		`a && b && c`,
		`a + b + c`,
		`a * b * c`,
	}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			_, h := parseExpr(t, input)
			assert.True(t, h.Empty())
		})
	}
}

// --- Invariant 4: unary operator counting.

func TestInvariant_UnaryCounting(t *testing.T) {
	cases := []struct {
		input string
		kind  cst.NegOpKind
		count int
	}{
		{`!a`, cst.NegBang, 1},
		{`!!!!a`, cst.NegBang, 4},
		{`!!!!!a`, cst.NegOverBang, 0},
		{`-a`, cst.NegDash, 1},
		{`----a`, cst.NegDash, 4},
		{`-----a`, cst.NegOverDash, 0},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			n, h := parseExpr(t, c.input)
			require.True(t, h.Empty())
			u := n.Value.Or.Value.Initial.Value.Initial.Value.Initial.Value.Initial.Value.Initial.Value
			require.NotNil(t, u.Op)
			assert.Equal(t, c.kind, u.Op.Kind)
			assert.Equal(t, c.count, u.Op.Count)
		})
	}
}

// --- Invariant 5: trailing comma tolerance.

func TestInvariant_TrailingCommas(t *testing.T) {
	cases := []string{
		`[1, 2,]`,
		`{a: 1,}`,
		`f(1, 2,)`,
	}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			_, h := parseExpr(t, input)
			assert.True(t, h.Empty(), "unexpected errors for %q: %v", input, h.Records())
		})
	}
}

// --- Invariant 6: recovery completeness.

func TestInvariant_RecoveryCompleteness(t *testing.T) {
	input := `permit(principal, action, resource);
	grant nonsense here;
	forbid(principal, action, resource) when { 1 == 1 };
	also garbage;
	`
	n, h := parsePolicies(t, input, true)
	require.True(t, n.IsSome())
	require.Len(t, h.Records(), 2)
	for _, rec := range h.Records() {
		assert.Equal(t, reporter.Recovered, rec.Kind)
	}

	items := n.Value.Items
	require.Len(t, items, 4)
	assert.False(t, items[0].Value.Error)
	assert.True(t, items[1].Value.Error)
	assert.False(t, items[2].Value.Error)
	assert.True(t, items[3].Value.Error)
}

func TestInvariant_RecoveryCompleteness_StrictYieldsNone(t *testing.T) {
	input := `permit(principal, action, resource); grant nonsense;`
	n, h := parsePolicies(t, input, false)
	require.True(t, n.IsSome())
	require.Len(t, h.Records(), 1)

	items := n.Value.Items
	require.Len(t, items, 2)
	assert.True(t, items[0].IsSome())
	assert.False(t, items[1].IsSome())
}

// --- Invariant 7: reserved words as field names.

func TestInvariant_ReservedWordsAsFieldNames(t *testing.T) {
	cases := []string{
		`x.if`,
		`x.then`,
		`x.true`,
		`x has if.then`,
	}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			_, h := parseExpr(t, input)
			assert.True(t, h.Empty(), "unexpected errors for %q: %v", input, h.Records())
		})
	}
}

// --- Invariant 8: Slot is valid only as a Primary.

func TestInvariant_SlotOnlyAsPrimary(t *testing.T) {
	_, h := parseExpr(t, `?principal + 1`)
	assert.True(t, h.Empty())
}

func TestInvariant_SlotNotValidAfterDot(t *testing.T) {
	// parseMemAccessList stops silently (no recovery point below Expr),
	// so the failure only surfaces once something downstream expects
	// the token stream to be exhausted — here, the closing '}' of a
	// when-clause body.
	input := `permit(principal, action, resource) when { x.?principal };`
	_, h := parsePolicies(t, input, true)
	assert.False(t, h.Empty())
}

// --- Concrete scenarios table (spec section 8).

func TestConcreteScenarios(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantClean bool
	}{
		{"simple permit", `permit(principal, action, resource);`, true},
		{
			"permit with when clause",
			`permit(principal, action, resource) when { principal.age > 18 };`,
			true,
		},
		{
			"forbid with group membership constraint",
			`forbid(principal in Group::"admins", action, resource);`,
			true,
		},
		{
			"template slots",
			`permit(principal == ?principal, action, resource == ?resource);`,
			true,
		},
		{
			"annotation",
			`@id("rule1") permit(principal, action, resource);`,
			true,
		},
		{
			"is-in combined constraint",
			`permit(principal is User in Group::"g", action, resource);`,
			true,
		},
		{
			"unknown effect keyword is accepted syntactically",
			`grant(principal, action, resource);`,
			true,
		},
		{
			"missing semicolon",
			`permit(principal, action, resource)`,
			false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, h := parsePolicies(t, c.input, true)
			require.True(t, n.IsSome())
			if c.wantClean {
				assert.True(t, h.Empty(), "unexpected errors: %v", h.Records())
			} else {
				assert.False(t, h.Empty())
			}
		})
	}
}

// --- Slots and entity references, exercised directly since they sit
// off the main expression spine.

func TestEntityReferenceAndRecordInit(t *testing.T) {
	n, h := parseExpr(t, `Ns::Type::{name: "x", age: 3}`)
	require.True(t, h.Empty())
	prim := n.Value.Or.Value.Initial.Value.Initial.Value.Initial.Value.Initial.Value.Initial.Value.Item.Value.Item.Value
	assert.Equal(t, cst.PrimaryRef, prim.Kind)
	require.True(t, prim.Ref.IsSome())
	ref := *prim.Ref.Value
	assert.Equal(t, cst.RefRecord, ref.Kind)
	require.Len(t, ref.RInits, 2)
}

// Parsing the same input twice must produce structurally identical CST
// shapes (spans included, modulo which Handle they point back to). A
// hand-rolled deep-equal here would need its own unexported-field
// workaround for every nested type; cmp.Diff with one Comparer for
// *source.Handle covers the whole tree at once.
func TestDeterministicParse(t *testing.T) {
	input := `permit(principal in Group::"admins", action, resource) when { principal.age > 18 || principal.vip };`
	n1, h1 := parsePolicies(t, input, true)
	n2, h2 := parsePolicies(t, input, true)
	require.True(t, h1.Empty())
	require.True(t, h2.Empty())

	if diff := cmp.Diff(n1, n2, ignoreHandle); diff != "" {
		t.Errorf("repeated parse of identical input diverged (-first +second):\n%s", diff)
	}
}

func TestIfExpr(t *testing.T) {
	n, h := parseExpr(t, `if a then b else c`)
	require.True(t, h.Empty())
	assert.Equal(t, cst.ExprIf, n.Value.Kind)
	assert.True(t, n.Value.If.Cond.IsSome())
	assert.True(t, n.Value.If.Then.IsSome())
	assert.True(t, n.Value.If.Else.IsSome())
}
