// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package cst

import "github.com/holomush/cedarcst/token"

// IdentKind discriminates Ident's reserved-word variants from the
// free-form user-identifier variant. A single sum type covers both, per
// the spec's "reserved-word identifier duality" design note: tokens are
// never reclassified after lexing, they simply keep their reserved-word
// variant when they show up in an identifier position.
type IdentKind int

const (
	IdentFree IdentKind = iota
	IdentPrincipal
	IdentAction
	IdentResource
	IdentContext
	IdentPermit
	IdentForbid
	IdentWhen
	IdentUnless
	IdentIn
	IdentHas
	IdentLike
	IdentIs
	IdentThen
	IdentElse
	IdentIf
	IdentTrue
	IdentFalse
)

// Ident is the CST identifier: one variant per reserved word, plus
// IdentFree for ordinary user identifiers. Name always holds the exact
// source spelling, reserved or not, so callers never need a separate
// table to render an Ident back out.
type Ident struct {
	Kind IdentKind
	Name string
}

var identKindByTokenKind = map[token.Kind]IdentKind{
	token.KwPrincipal: IdentPrincipal,
	token.KwAction:    IdentAction,
	token.KwResource:  IdentResource,
	token.KwContext:   IdentContext,
	token.KwPermit:    IdentPermit,
	token.KwForbid:    IdentForbid,
	token.KwWhen:      IdentWhen,
	token.KwUnless:    IdentUnless,
	token.KwIn:        IdentIn,
	token.KwHas:       IdentHas,
	token.KwLike:      IdentLike,
	token.KwIs:        IdentIs,
	token.KwThen:      IdentThen,
	token.KwElse:      IdentElse,
	token.KwIf:        IdentIf,
	token.KwTrue:      IdentTrue,
	token.KwFalse:     IdentFalse,
}

// IdentFromToken builds an Ident from any token that is valid in an
// identifier position: a plain IDENTIFIER or one of the reserved words.
// Callers are responsible for rejecting tokens (e.g. SLOT) that are
// never valid there.
func IdentFromToken(tok token.Token) Ident {
	if kind, ok := identKindByTokenKind[tok.Kind]; ok {
		return Ident{Kind: kind, Name: tok.Text}
	}
	return Ident{Kind: IdentFree, Name: tok.Text}
}

// IsReserved reports whether id came from a reserved word rather than a
// free-form identifier.
func (id Ident) IsReserved() bool { return id.Kind != IdentFree }

// NegOpKind discriminates Bang/Dash counted unary operators from their
// collapsed Over* forms.
type NegOpKind int

const (
	NegBang NegOpKind = iota
	NegOverBang
	NegDash
	NegOverDash
)

// NegOp is a run of leading '!' or '-' tokens. Count holds the run
// length for Bang/Dash (always 1..=4); it is meaningless (left at 0)
// for the Over* variants, which mean "5 or more" without recording
// exactly how many.
type NegOp struct {
	Kind  NegOpKind
	Count int
}

// NegOpFromRun builds the NegOp for a run of n consecutive '!' (bang =
// true) or '-' (bang = false) tokens, collapsing to the Over* variant
// once n reaches 5, per the spec's unary-counting invariant.
func NegOpFromRun(bang bool, n int) NegOp {
	switch {
	case bang && n <= 4:
		return NegOp{Kind: NegBang, Count: n}
	case bang:
		return NegOp{Kind: NegOverBang}
	case n <= 4:
		return NegOp{Kind: NegDash, Count: n}
	default:
		return NegOp{Kind: NegOverDash}
	}
}

// RelOp is a Relation-tail comparison operator.
type RelOp int

const (
	RelLess RelOp = iota
	RelLessEq
	RelGreater
	RelGreaterEq
	RelEq
	RelNotEq
	RelIn
	// RelInvalidSingleEq arises only from a bare '=' where '==' was
	// likely meant. It is accepted syntactically (not a parse error) so
	// a later stage can emit a "did you mean ==" diagnostic.
	RelInvalidSingleEq
)

func (op RelOp) String() string {
	switch op {
	case RelLess:
		return "<"
	case RelLessEq:
		return "<="
	case RelGreater:
		return ">"
	case RelGreaterEq:
		return ">="
	case RelEq:
		return "=="
	case RelNotEq:
		return "!="
	case RelIn:
		return "in"
	case RelInvalidSingleEq:
		return "="
	default:
		return "?"
	}
}
