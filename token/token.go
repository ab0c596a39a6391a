// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package token defines the token classes produced by the lexer and the
// reserved-word table the grammar engine and lexer share.
package token

import "github.com/alecthomas/participle/v2/lexer"

// Kind identifies the class of a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String
	Slot // '?' followed by an identifier; text includes the '?'

	// Punctuation and operators.
	At
	Dot
	Comma
	Semi
	Colon
	ColonColon
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	EqEq
	NotEq
	Lt
	LtEq
	GtEq
	Gt
	OrOr
	AndAnd
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Eq

	// Reserved words. Each has its own Kind so the grammar engine can
	// switch on it directly instead of re-comparing strings; token.Text
	// still carries the original spelling for Ident-variant construction.
	KwTrue
	KwFalse
	KwIf
	KwPermit
	KwForbid
	KwWhen
	KwUnless
	KwIn
	KwHas
	KwLike
	KwIs
	KwThen
	KwElse
	KwPrincipal
	KwAction
	KwResource
	KwContext
)

var kindNames = map[Kind]string{
	EOF: "EOF", Ident: "IDENTIFIER", Number: "NUMBER", String: "STRINGLIT", Slot: "SLOT",
	At: "@", Dot: ".", Comma: ",", Semi: ";", Colon: ":", ColonColon: "::",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	EqEq: "==", NotEq: "!=", Lt: "<", LtEq: "<=", GtEq: ">=", Gt: ">",
	OrOr: "||", AndAnd: "&&", Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Bang: "!", Eq: "=",
	KwTrue: "true", KwFalse: "false", KwIf: "if", KwPermit: "permit", KwForbid: "forbid",
	KwWhen: "when", KwUnless: "unless", KwIn: "in", KwHas: "has", KwLike: "like", KwIs: "is",
	KwThen: "then", KwElse: "else", KwPrincipal: "principal", KwAction: "action",
	KwResource: "resource", KwContext: "context",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// reserved maps a reserved word's spelling to its Kind. Lookup happens
// after the lexer has already matched a maximal identifier-shaped run,
// mirroring the spec's "keyword matching happens before IDENTIFIER"
// ordering without needing a second regex pass.
var reserved = map[string]Kind{
	"true": KwTrue, "false": KwFalse, "if": KwIf, "permit": KwPermit, "forbid": KwForbid,
	"when": KwWhen, "unless": KwUnless, "in": KwIn, "has": KwHas, "like": KwLike, "is": KwIs,
	"then": KwThen, "else": KwElse, "principal": KwPrincipal, "action": KwAction,
	"resource": KwResource, "context": KwContext,
}

// Reserved reports whether word is a reserved word and, if so, its Kind.
func Reserved(word string) (Kind, bool) {
	k, ok := reserved[word]
	return k, ok
}

// IsReservedWord reports whether word is one of Cedar's reserved words.
func IsReservedWord(word string) bool {
	_, ok := reserved[word]
	return ok
}

// Token is a single lexed unit: its class, its exact source text, and the
// position of its first byte.
type Token struct {
	Kind Kind
	Text string
	Pos  lexer.Position
}

// End returns the byte offset one past the token's last byte.
func (t Token) End() int { return t.Pos.Offset + len(t.Text) }

// IsKeyword reports whether t's Kind is one of the reserved-word kinds.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwTrue && t.Kind <= KwContext
}
