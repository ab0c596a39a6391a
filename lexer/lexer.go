// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package lexer tokenizes Cedar policy source.
//
// The scanning loop is hand-written rather than built on
// participle/v2/lexer's regex-driven Simple lexer: the spec calls for
// lexical-error classification (unterminated string vs. unrecognized
// byte) that a single combined regex can't distinguish on its own, the
// same problem a hand-rolled, byte-at-a-time scanner solves in
// kralicky/protocompile's parser/lexer.go. What we do reuse from
// participle is lexer.Position itself — Offset/Line/Column is exactly
// the position shape the Node Builder and reporter need, so there is no
// reason to reinvent it.
package lexer

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/holomush/cedarcst/token"
)

// Error is a lexical error: an unrecognized byte or an unterminated
// string literal, reported at the byte offset where scanning stopped
// making sense.
type Error struct {
	Pos     lexer.Position
	Message string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Message
}

// Lexer scans Cedar source text one token at a time.
type Lexer struct {
	src    string
	name   string
	offset int
	line   int
	col    int
}

// New returns a Lexer over src. name is used only to populate
// lexer.Position.Filename for diagnostics.
func New(name, src string) *Lexer {
	return &Lexer{src: src, name: name, line: 1, col: 1}
}

func (l *Lexer) pos() lexer.Position {
	return lexer.Position{Filename: l.name, Offset: l.offset, Line: l.line, Column: l.col}
}

func (l *Lexer) eof() bool { return l.offset >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.offset]
}

func (l *Lexer) peekAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

func (l *Lexer) advance() byte {
	b := l.src[l.offset]
	l.offset++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// skipTrivia skips whitespace and line comments, the two token classes
// the spec says are discarded rather than reported.
func (l *Lexer) skipTrivia() {
	for !l.eof() {
		b := l.peek()
		if isSpace(b) {
			l.advance()
			continue
		}
		if b == '/' && l.peekAt(1) == '/' {
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

// Next scans and returns the next token. At end of input it returns a
// token.EOF token forever; it never returns both a token and an error.
func (l *Lexer) Next() (token.Token, *Error) {
	l.skipTrivia()
	start := l.pos()

	if l.eof() {
		return token.Token{Kind: token.EOF, Pos: start}, nil
	}

	b := l.peek()
	switch {
	case isDigit(b):
		return l.lexNumber(start), nil
	case isIdentStart(b):
		return l.lexIdent(start), nil
	case b == '"':
		return l.lexString(start)
	case b == '?':
		return l.lexSlot(start)
	}
	return l.lexPunct(start)
}

func (l *Lexer) lexNumber(start lexer.Position) token.Token {
	var sb strings.Builder
	for !l.eof() && isDigit(l.peek()) {
		sb.WriteByte(l.advance())
	}
	return token.Token{Kind: token.Number, Text: sb.String(), Pos: start}
}

func (l *Lexer) lexIdent(start lexer.Position) token.Token {
	var sb strings.Builder
	for !l.eof() && isIdentCont(l.peek()) {
		sb.WriteByte(l.advance())
	}
	text := sb.String()
	if kind, ok := token.Reserved(text); ok {
		return token.Token{Kind: kind, Text: text, Pos: start}
	}
	return token.Token{Kind: token.Ident, Text: text, Pos: start}
}

func (l *Lexer) lexString(start lexer.Position) (token.Token, *Error) {
	var sb strings.Builder
	sb.WriteByte(l.advance()) // opening quote
	for {
		if l.eof() {
			return token.Token{}, &Error{Pos: start, Message: "unterminated string literal"}
		}
		c := l.peek()
		if c == '\\' {
			sb.WriteByte(l.advance())
			if l.eof() {
				return token.Token{}, &Error{Pos: start, Message: "unterminated string literal"}
			}
			sb.WriteByte(l.advance()) // escaped byte, passed through unparsed
			continue
		}
		if c == '"' {
			sb.WriteByte(l.advance())
			break
		}
		sb.WriteByte(l.advance())
	}
	return token.Token{Kind: token.String, Text: sb.String(), Pos: start}, nil
}

// lexSlot scans '?' followed by an identifier. A bare '?' (or '?' not
// followed by an identifier start) is not valid Cedar source anywhere;
// report it the same way an unrecognized byte would be.
func (l *Lexer) lexSlot(start lexer.Position) (token.Token, *Error) {
	var sb strings.Builder
	sb.WriteByte(l.advance()) // '?'
	if l.eof() || !isIdentStart(l.peek()) {
		return token.Token{}, &Error{Pos: start, Message: "unrecognized character after '?'"}
	}
	for !l.eof() && isIdentCont(l.peek()) {
		sb.WriteByte(l.advance())
	}
	return token.Token{Kind: token.Slot, Text: sb.String(), Pos: start}, nil
}

func (l *Lexer) lexPunct(start lexer.Position) (token.Token, *Error) {
	b := l.advance()
	two := func(second byte, kind token.Kind, one token.Kind) token.Token {
		if l.peek() == second {
			l.advance()
			return token.Token{Kind: kind, Text: string(b) + string(second), Pos: start}
		}
		return token.Token{Kind: one, Text: string(b), Pos: start}
	}
	switch b {
	case '@':
		return token.Token{Kind: token.At, Text: "@", Pos: start}, nil
	case '.':
		return token.Token{Kind: token.Dot, Text: ".", Pos: start}, nil
	case ',':
		return token.Token{Kind: token.Comma, Text: ",", Pos: start}, nil
	case ';':
		return token.Token{Kind: token.Semi, Text: ";", Pos: start}, nil
	case ':':
		return two(':', token.ColonColon, token.Colon), nil
	case '(':
		return token.Token{Kind: token.LParen, Text: "(", Pos: start}, nil
	case ')':
		return token.Token{Kind: token.RParen, Text: ")", Pos: start}, nil
	case '{':
		return token.Token{Kind: token.LBrace, Text: "{", Pos: start}, nil
	case '}':
		return token.Token{Kind: token.RBrace, Text: "}", Pos: start}, nil
	case '[':
		return token.Token{Kind: token.LBracket, Text: "[", Pos: start}, nil
	case ']':
		return token.Token{Kind: token.RBracket, Text: "]", Pos: start}, nil
	case '=':
		return two('=', token.EqEq, token.Eq), nil
	case '!':
		return two('=', token.NotEq, token.Bang), nil
	case '<':
		return two('=', token.LtEq, token.Lt), nil
	case '>':
		return two('=', token.GtEq, token.Gt), nil
	case '|':
		if l.peek() == '|' {
			l.advance()
			return token.Token{Kind: token.OrOr, Text: "||", Pos: start}, nil
		}
	case '&':
		if l.peek() == '&' {
			l.advance()
			return token.Token{Kind: token.AndAnd, Text: "&&", Pos: start}, nil
		}
	case '+':
		return token.Token{Kind: token.Plus, Text: "+", Pos: start}, nil
	case '-':
		return token.Token{Kind: token.Minus, Text: "-", Pos: start}, nil
	case '*':
		return token.Token{Kind: token.Star, Text: "*", Pos: start}, nil
	case '/':
		return token.Token{Kind: token.Slash, Text: "/", Pos: start}, nil
	case '%':
		return token.Token{Kind: token.Percent, Text: "%", Pos: start}, nil
	}
	return token.Token{}, &Error{Pos: start, Message: "unrecognized character '" + string(b) + "'"}
}

// All scans the entire input and returns every token up to and
// including the first EOF token, or the first lexical error
// encountered. Callers that need recovery-tolerant behavior should use
// Next directly instead.
func All(name, src string) ([]token.Token, *Error) {
	l := New(name, src)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}
