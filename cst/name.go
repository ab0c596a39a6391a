// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package cst

// Name is a possibly-namespaced identifier path: Ns::Inner::Final. Path
// holds every component before the last one; Name holds the last.
type Name struct {
	Path []Ident
	Name Ident
}

// RefKind discriminates Ref's two forms.
type RefKind int

const (
	// RefUid is Type::"id".
	RefUid RefKind = iota
	// RefRecord is Ns::Type::{k: v, ...}.
	RefRecord
)

// Ref is an entity reference. Eid is populated for RefUid, RInits for
// RefRecord. Name's production inlines this same path grammar at its
// own call site rather than sharing a nonterminal with Ref, because
// merging the two would need more than one token of lookahead to
// disambiguate a trailing '::' — see DESIGN.md.
type Ref struct {
	Kind   RefKind
	Path   Name
	Eid    Str
	RInits []RefInit
}

// RefInit is one `key: literal` pair inside a Ref's record-init form.
type RefInit struct {
	Key   Ident
	Value Literal
}

// RecInit is one `key: value` pair inside a Primary record-init
// ({...}). Both sides are full Exprs: Cedar lets a record key be any
// expression (with the explicit `if` special case documented on the
// parser's parseRecInitList), not just a bare identifier or string.
type RecInit struct {
	Key   Node[Expr]
	Value Node[Expr]
}

// SlotKind discriminates Slot's three forms.
type SlotKind int

const (
	SlotPrincipal SlotKind = iota
	SlotResource
	SlotOther
)

// Slot is a template placeholder: ?principal, ?resource, or an
// arbitrary ?name (Other).
type Slot struct {
	Kind  SlotKind
	Other string // populated when Kind == SlotOther, without the '?'
}
