// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package parser is the Grammar Engine: a hand-written recursive-descent
// parser driving the layered-precedence Cedar expression grammar and the
// policy-statement grammar around it, building cst.Node values as it
// goes and reporting to a reporter.Sink at the two declared recovery
// points instead of aborting on the first syntax error.
//
// It is deliberately not built on participle's reflection-driven
// Build[T]: that engine parses into one fixed struct shape per type and
// has no hook for per-production Node[Option[T]] wrapping, dual
// tolerant/strict recovery, or the individually callable entry points
// below. Those are exactly the parts of this engine that don't fit a
// struct-tag grammar, so it walks the token stream directly in the
// style of ast.go's one-struct-per-production layout. See DESIGN.md.
package parser

import (
	"github.com/holomush/cedarcst/cst"
	lex "github.com/holomush/cedarcst/lexer"
	"github.com/holomush/cedarcst/reporter"
	"github.com/holomush/cedarcst/source"
	"github.com/holomush/cedarcst/token"
)

// Parser holds the token stream and parse-time configuration for one
// call. It is not reused across calls: New tokenizes the whole input
// up front, so a Parser's lifetime is exactly one parse.
type Parser struct {
	toks     []token.Token
	pos      int
	src      *source.Handle
	sink     reporter.Sink
	tolerant bool
}

// New tokenizes input and returns a Parser ready to drive any of the
// production methods below. tolerant selects which CST shape the two
// declared recovery points produce (PolicyError/ErrorExpr vs. None);
// sink behavior does not depend on it, per the spec's single-flag
// tolerant/strict design.
func New(input string, src *source.Handle, sink reporter.Sink, tolerant bool) *Parser {
	name := ""
	if src != nil {
		name = src.Name()
	}
	return &Parser{toks: tokenize(name, input, sink), src: src, sink: sink, tolerant: tolerant}
}

// tokenize runs the lexer to completion, folding lexical errors into
// sink as Lexical records and resuming scanning rather than aborting —
// the lexer itself always makes forward progress past a bad byte or an
// unterminated string, so repeated calls to Next after an error are
// always safe.
func tokenize(name, input string, sink reporter.Sink) []token.Token {
	lx := lex.New(name, input)
	var toks []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			sink.Report(reporter.RecoveryRecord{
				Kind:    reporter.Lexical,
				Start:   err.Pos,
				End:     err.Pos,
				Message: err.Message,
			})
			continue
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		idx = len(p.toks) - 1
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

// startPos is the byte offset of the current token, the usual start
// bound for a production about to be parsed.
func (p *Parser) startPos() int { return p.cur().Pos.Offset }

// prevEnd is the byte offset just past the most recently consumed
// token, the usual end bound for a production that just finished.
func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].End()
}

// expectKind consumes the current token if it matches k, reporting a
// Syntactic record and leaving the token in place otherwise.
func (p *Parser) expectKind(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	tok := p.cur()
	p.sink.Report(reporter.RecoveryRecord{
		Kind:     reporter.Syntactic,
		Start:    tok.Pos,
		End:      tok.Pos,
		Message:  "expected " + k.String() + ", found " + tok.Kind.String(),
		Expected: []string{k.String()},
	})
	return false
}

func isIdentToken(k token.Kind) bool {
	return k == token.Ident || (k >= token.KwTrue && k <= token.KwContext)
}

// some builds a Some node for a production that started at byte offset
// start and ended at the most recently consumed token.
func some[T any](p *Parser, start int, v T) cst.Node[T] {
	return cst.Build(start, p.prevEnd(), p.src, v)
}

// none builds a None node for a production that failed having started
// at byte offset start.
func none[T any](p *Parser, start int) cst.Node[T] {
	return cst.BuildNone[T](start, p.prevEnd(), p.src)
}

// wrap is some/none collapsed behind the production's own success flag.
func wrap[T any](p *Parser, start int, v T, ok bool) cst.Node[T] {
	if ok {
		return some(p, start, v)
	}
	return none[T](p, start)
}

// finish is used by the standalone entry points (Primary, Name, Ref,
// Ident) that have no declared recovery point of their own: on failure
// it still reports to the sink — "all kinds are appended to the sink"
// applies regardless of recovery-point status — and returns None
// rather than a tolerant placeholder, since none of those CST shapes
// has one.
func finish[T any](p *Parser, startTok token.Token, v T, ok bool, msg string) cst.Node[T] {
	if ok {
		return some(p, startTok.Pos.Offset, v)
	}
	p.sink.Report(reporter.RecoveryRecord{
		Kind:    reporter.Syntactic,
		Start:   startTok.Pos,
		End:     p.cur().Pos,
		Message: msg,
	})
	return none[T](p, startTok.Pos.Offset)
}

func stringFromToken(tok token.Token) cst.Str {
	t := tok.Text
	if len(t) >= 2 {
		t = t[1 : len(t)-1]
	}
	return cst.Str{Value: t}
}

func slotFromToken(tok token.Token) cst.Slot {
	name := tok.Text[1:]
	switch name {
	case "principal":
		return cst.Slot{Kind: cst.SlotPrincipal}
	case "resource":
		return cst.Slot{Kind: cst.SlotResource}
	default:
		return cst.Slot{Kind: cst.SlotOther, Other: name}
	}
}

// Parse runs the Policies production over the whole input using this
// Parser's own tolerant/strict setting. The package-level ParsePolicies
// is a convenience wrapper that always parses tolerantly; callers that
// need the caller-chosen tolerant flag (e.g. a CLI's --tolerant flag)
// go through New and Parse directly.
func (p *Parser) Parse() cst.Node[cst.Policies] {
	return p.policiesNode()
}

// ParsePolicies parses an entire policy source file.
func ParsePolicies(input string, src *source.Handle, sink reporter.Sink) cst.Node[cst.Policies] {
	return New(input, src, sink, true).policiesNode()
}

// ParsePolicy parses a single policy statement.
func ParsePolicy(input string, src *source.Handle, sink reporter.Sink) cst.Node[cst.Policy] {
	return New(input, src, sink, true).policyNode()
}

// ParseExpr parses a single expression.
func ParseExpr(input string, src *source.Handle, sink reporter.Sink) cst.Node[cst.Expr] {
	return New(input, src, sink, true).expr()
}

// ParsePrimary parses a single Primary production.
func ParsePrimary(input string, src *source.Handle, sink reporter.Sink) cst.Node[cst.Primary] {
	p := New(input, src, sink, true)
	startTok := p.cur()
	v, ok := p.parsePrimaryRaw()
	return finish(p, startTok, v, ok, "expected a primary expression")
}

// ParseName parses a single Name production.
func ParseName(input string, src *source.Handle, sink reporter.Sink) cst.Node[cst.Name] {
	p := New(input, src, sink, true)
	startTok := p.cur()
	v, ok := p.parseNameRaw()
	return finish(p, startTok, v, ok, "expected a name")
}

// ParseRef parses a single Ref production.
func ParseRef(input string, src *source.Handle, sink reporter.Sink) cst.Node[cst.Ref] {
	p := New(input, src, sink, true)
	startTok := p.cur()
	v, ok := p.parseRefRaw()
	return finish(p, startTok, v, ok, "expected an entity reference")
}

// ParseIdent parses a single Ident production.
func ParseIdent(input string, src *source.Handle, sink reporter.Sink) cst.Node[cst.Ident] {
	p := New(input, src, sink, true)
	startTok := p.cur()
	v, ok := p.parseIdentRaw()
	return finish(p, startTok, v, ok, "expected an identifier")
}
