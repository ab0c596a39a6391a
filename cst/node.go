// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package cst is the Concrete Syntax Tree produced by the Cedar parser:
// the generic Node wrapper (the Node Builder component) and the full
// tagged-variant data model the grammar engine builds.
package cst

import "github.com/holomush/cedarcst/source"

// Node is the Go shape of the spec's Node<Option<T>>: every production
// result, Some(T) or None, carries an optional source span.
//
// Value is nil for None (an unrecoverable local failure preserved so the
// enclosing shape stays intact); Span is nil whenever the source handle
// has keep_spans disabled, regardless of Value.
type Node[T any] struct {
	Value *T
	Span  *source.Span
}

// Some builds a Node carrying a well-formed value.
func Some[T any](v T, span *source.Span) Node[T] {
	return Node[T]{Value: &v, Span: span}
}

// None builds a Node representing an unrecoverable local failure. The
// span, if any, still covers whatever input was consumed attempting the
// production, so ancestor spans continue to enclose it.
func None[T any](span *source.Span) Node[T] {
	return Node[T]{Span: span}
}

// IsSome reports whether the node holds a well-formed value.
func (n Node[T]) IsSome() bool { return n.Value != nil }

// Build is the Node Builder: given the byte range a production
// consumed and its source handle, it returns a Node wrapping value,
// with the span retained only when src.KeepSpans() is true.
func Build[T any](start, end int, src *source.Handle, value T) Node[T] {
	return Some(value, buildSpan(start, end, src))
}

// BuildNone is Build's None counterpart, used at a recovery point or
// whenever a production could not produce a value.
func BuildNone[T any](start, end int, src *source.Handle) Node[T] {
	return None[T](buildSpan(start, end, src))
}

func buildSpan(start, end int, src *source.Handle) *source.Span {
	if src == nil || !src.KeepSpans() {
		return nil
	}
	return &source.Span{Start: start, End: end, Source: src}
}
