// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package source provides the immutable, shared view of a policy source
// file that every CST span refers back to.
package source

import "encoding/json"

// Handle is an immutable, shared view of a single input text. It is the
// Source Handle component: every Span produced while parsing a given
// input points back at the same Handle, and every Node built from that
// input shares it.
//
// Go's garbage collector already gives the sharing the spec asks of a
// reference-counted handle: a *Handle stays alive for as long as any
// Span (or anything else) still points at it, with no manual refcount
// to get wrong. See DESIGN.md for the Open Question this resolves.
type Handle struct {
	name      string
	text      string
	keepSpans bool
}

// New creates a Handle over text. name is typically a filename or other
// caller-supplied identifier used only for diagnostics; it may be empty.
// keepSpans controls whether Nodes built against this Handle retain their
// Span or discard it (see Span and the cst.Node Builder).
func New(name, text string, keepSpans bool) *Handle {
	return &Handle{name: name, text: text, keepSpans: keepSpans}
}

// Name returns the caller-supplied identifier for this source, if any.
func (h *Handle) Name() string { return h.name }

// Text returns the full input text.
func (h *Handle) Text() string { return h.text }

// KeepSpans reports whether spans should be retained for nodes built
// against this handle.
func (h *Handle) KeepSpans() bool { return h.keepSpans }

// Slice returns the substring of the input text in [start, end).
func (h *Handle) Slice(start, end int) string { return h.text[start:end] }

// Span is a (start, end, source) byte range indexing into a Handle's
// text. Start and End are byte offsets, End exclusive.
type Span struct {
	Start  int
	End    int
	Source *Handle
}

// Text returns the source text covered by the span.
func (s *Span) Text() string {
	if s == nil || s.Source == nil {
		return ""
	}
	return s.Source.Slice(s.Start, s.End)
}

// MarshalJSON renders a Span as {"start","end","text"}, omitting the
// Source handle (which carries no exported fields of its own and would
// otherwise serialize as an empty, confusing object).
func (s *Span) MarshalJSON() ([]byte, error) {
	type wire struct {
		Start int    `json:"start"`
		End   int    `json:"end"`
		Text  string `json:"text"`
	}
	return json.Marshal(wire{Start: s.Start, End: s.End, Text: s.Text()})
}

// Enclose returns the smallest span that encloses both s and other. Both
// must share the same Source; Enclose panics if they do not (mixing spans
// across source handles is always a bug in the caller).
func Enclose(s, other *Span) *Span {
	if s == nil {
		return other
	}
	if other == nil {
		return s
	}
	if s.Source != other.Source {
		panic("source: Enclose called with spans from different handles")
	}
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return &Span{Start: start, End: end, Source: s.Source}
}
