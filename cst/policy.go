// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package cst

// Policies is the parse result of a whole source file: an ordered
// sequence of Policy nodes in input textual order.
type Policies struct {
	Items []Node[Policy]
}

// Annotation is an `@key("value")` or `@key` decoration preceding a
// policy. Value is nil when the annotation has no parenthesized
// payload at all (grammatically optional), distinct from a Node[Str]
// whose Value is nil (a parse failure inside the parens).
type Annotation struct {
	Key   Node[Ident]
	Value *Node[Str]
}

// VariableIneq is a VariableDef's optional trailing `(RelOp Expr)`
// clause, e.g. `principal == User::"alice"` or `principal is User in
// Group::"g"`.
type VariableIneq struct {
	Op   RelOp
	Expr Node[Expr]
}

// VariableDef is one `principal`/`action`/`resource` slot inside a
// policy's parameter list. UnusedTypeName, EntityType, and Ineq are
// all grammatically optional; a nil pointer means the clause was
// simply absent from the source, not that it was attempted and
// failed.
//
// EntityType takes an Add rather than a Name or Expr specifically to
// avoid an LR(1) conflict with a following 'in' clause.
type VariableDef struct {
	Variable       Node[Ident]
	UnusedTypeName *Node[Name]
	EntityType     *Node[Add]
	Ineq           *VariableIneq
}

// Cond is a `when { ... }` or `unless { ... }` clause attached to a
// policy. Expr is nil for a syntactically empty body (`when {}`),
// which the grammar accepts and leaves for a later validation stage to
// reject; a non-nil Expr whose Value is nil instead represents a body
// that was present but failed to parse.
type Cond struct {
	Keyword Node[Ident]
	Expr    *Node[Expr]
}

// Policy is one `permit(...)`/`forbid(...)` statement, or (in tolerant
// mode) a placeholder for one that failed to parse at all. Error is
// true for the placeholder form, in which case Annotations, Effect,
// Variables, and Conds are all left at their zero values.
//
// Effect is typed AnyIdent rather than restricted to permit/forbid at
// parse time: downstream validates the effect keyword, which is what
// lets recovery still produce a useful diagnostic for e.g. `grant(...)`.
type Policy struct {
	Error       bool
	Annotations []Node[Annotation]
	Effect      Node[Ident]
	Variables   []Node[VariableDef]
	Conds       []Node[Cond]
}
