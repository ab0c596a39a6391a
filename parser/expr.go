// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package parser

import (
	"github.com/holomush/cedarcst/cst"
	"github.com/holomush/cedarcst/token"
)

// expr is the Expression-level recovery point: a plain Or, an
// if/then/else, or — on failure — the tolerant ErrorExpr / strict None
// placeholder.
func (p *Parser) expr() cst.Node[cst.Expr] {
	startTok := p.cur()

	if p.at(token.KwIf) {
		p.advance()
		condN := p.expr()
		if !p.expectKind(token.KwThen) {
			return p.recoverExpr(startTok)
		}
		thenN := p.expr()
		if !p.expectKind(token.KwElse) {
			return p.recoverExpr(startTok)
		}
		elseN := p.expr()
		return some(p, startTok.Pos.Offset, cst.Expr{
			Kind: cst.ExprIf,
			If:   cst.IfExpr{Cond: condN, Then: thenN, Else: elseN},
		})
	}

	ov, ok := p.parseOr()
	if !ok {
		return p.recoverExpr(startTok)
	}
	orNode := some(p, startTok.Pos.Offset, ov)
	return some(p, startTok.Pos.Offset, cst.Expr{Kind: cst.ExprOr, Or: orNode})
}

func (p *Parser) parseOr() (cst.Or, bool) {
	start := p.startPos()
	av, ok := p.parseAnd()
	if !ok {
		return cst.Or{}, false
	}
	initial := some(p, start, av)
	var extended []cst.Node[cst.And]
	for p.at(token.OrOr) {
		p.advance()
		eStart := p.startPos()
		ev, eok := p.parseAnd()
		extended = append(extended, wrap(p, eStart, ev, eok))
		if !eok {
			break
		}
	}
	return cst.Or{Initial: initial, Extended: extended}, true
}

func (p *Parser) parseAnd() (cst.And, bool) {
	start := p.startPos()
	rv, ok := p.parseRelation()
	if !ok {
		return cst.And{}, false
	}
	initial := some(p, start, rv)
	var extended []cst.Node[cst.Relation]
	for p.at(token.AndAnd) {
		p.advance()
		eStart := p.startPos()
		ev, eok := p.parseRelation()
		extended = append(extended, wrap(p, eStart, ev, eok))
		if !eok {
			break
		}
	}
	return cst.And{Initial: initial, Extended: extended}, true
}

func (p *Parser) isRelOpStart() bool {
	switch p.cur().Kind {
	case token.EqEq, token.NotEq, token.Lt, token.LtEq, token.GtEq, token.Gt, token.Eq, token.KwIn:
		return true
	}
	return false
}

func (p *Parser) consumeRelOp() cst.RelOp {
	k := p.cur().Kind
	p.advance()
	switch k {
	case token.EqEq:
		return cst.RelEq
	case token.NotEq:
		return cst.RelNotEq
	case token.Lt:
		return cst.RelLess
	case token.LtEq:
		return cst.RelLessEq
	case token.GtEq:
		return cst.RelGreaterEq
	case token.Gt:
		return cst.RelGreater
	case token.KwIn:
		return cst.RelIn
	default: // token.Eq
		return cst.RelInvalidSingleEq
	}
}

func (p *Parser) parseRelation() (cst.Relation, bool) {
	start := p.startPos()
	av, ok := p.parseAdd()
	if !ok {
		return cst.Relation{}, false
	}
	addNode := some(p, start, av)

	switch {
	case p.isRelOpStart():
		var ext []cst.RelExt
		for p.isRelOpStart() {
			op := p.consumeRelOp()
			eStart := p.startPos()
			ev, eok := p.parseAdd()
			ext = append(ext, cst.RelExt{Op: op, Operand: wrap(p, eStart, ev, eok)})
			if !eok {
				break
			}
		}
		return cst.Relation{Kind: cst.RelationCommon, Initial: addNode, Extended: ext}, true

	case p.at(token.KwHas):
		p.advance()
		fieldNode, ok := p.parseHasRHS()
		return cst.Relation{Kind: cst.RelationHas, Target: addNode, Field: fieldNode}, ok

	case p.at(token.KwLike):
		p.advance()
		pStart := p.startPos()
		pv, ok := p.parseAdd()
		return cst.Relation{Kind: cst.RelationLike, Target: addNode, Pattern: wrap(p, pStart, pv, ok)}, ok

	case p.at(token.KwIs):
		p.advance()
		etStart := p.startPos()
		etv, etOk := p.parseAdd()
		etNode := wrap(p, etStart, etv, etOk)
		var inNode *cst.Node[cst.Add]
		if p.at(token.KwIn) {
			p.advance()
			inStart := p.startPos()
			iv, iok := p.parseAdd()
			n := wrap(p, inStart, iv, iok)
			inNode = &n
		}
		return cst.Relation{Kind: cst.RelationIsIn, Target: addNode, EntityType: etNode, InEntity: inNode}, etOk

	default:
		return cst.Relation{Kind: cst.RelationCommon, Initial: addNode}, true
	}
}

// parseHasRHS parses the right-hand side of `Add 'has' RHS`. The RFC
// 62 extended-has special case fires when RHS begins with the reserved
// word 'if': this branch synthesizes an Add rooted at the Ident::If
// variant directly (via identToAdd) rather than descending through
// Primary. parsePrimaryRaw would also accept 'if' as a bare Name here,
// since isIdentToken admits every reserved word, and would build the
// same shape.
func (p *Parser) parseHasRHS() (cst.Node[cst.Add], bool) {
	start := p.startPos()
	if p.at(token.KwIf) {
		p.advance()
		access := p.parseMemAccessList()
		return p.identToAdd(start, cst.Ident{Kind: cst.IdentIf, Name: "if"}, access), true
	}
	v, ok := p.parseAdd()
	return wrap(p, start, v, ok), ok
}

func (p *Parser) parseAdd() (cst.Add, bool) {
	start := p.startPos()
	mv, ok := p.parseMult()
	if !ok {
		return cst.Add{}, false
	}
	initial := some(p, start, mv)
	var ext []cst.AddExt
	for p.at(token.Plus) || p.at(token.Minus) {
		op := cst.AddPlus
		if p.at(token.Minus) {
			op = cst.AddMinus
		}
		p.advance()
		eStart := p.startPos()
		ev, eok := p.parseMult()
		ext = append(ext, cst.AddExt{Op: op, Operand: wrap(p, eStart, ev, eok)})
		if !eok {
			break
		}
	}
	return cst.Add{Initial: initial, Extended: ext}, true
}

func (p *Parser) parseMult() (cst.Mult, bool) {
	start := p.startPos()
	uv, ok := p.parseUnary()
	if !ok {
		return cst.Mult{}, false
	}
	initial := some(p, start, uv)
	var ext []cst.MultExt
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.Percent) {
		var op cst.MultOp
		switch p.cur().Kind {
		case token.Star:
			op = cst.MultStar
		case token.Slash:
			op = cst.MultSlash
		default:
			op = cst.MultPercent
		}
		p.advance()
		eStart := p.startPos()
		ev, eok := p.parseUnary()
		ext = append(ext, cst.MultExt{Op: op, Operand: wrap(p, eStart, ev, eok)})
		if !eok {
			break
		}
	}
	return cst.Mult{Initial: initial, Extended: ext}, true
}

func (p *Parser) parseUnary() (cst.Unary, bool) {
	var negOp *cst.NegOp
	if p.at(token.Bang) {
		n := 0
		for p.at(token.Bang) {
			n++
			p.advance()
		}
		op := cst.NegOpFromRun(true, n)
		negOp = &op
	} else if p.at(token.Minus) {
		n := 0
		for p.at(token.Minus) {
			n++
			p.advance()
		}
		op := cst.NegOpFromRun(false, n)
		negOp = &op
	}
	itemStart := p.startPos()
	mv, ok := p.parseMember()
	if !ok {
		return cst.Unary{}, false
	}
	return cst.Unary{Op: negOp, Item: some(p, itemStart, mv)}, true
}

func (p *Parser) parseMember() (cst.Member, bool) {
	start := p.startPos()
	pv, ok := p.parsePrimaryRaw()
	if !ok {
		return cst.Member{}, false
	}
	primaryNode := some(p, start, pv)
	access := p.parseMemAccessList()
	return cst.Member{Item: primaryNode, Access: access}, true
}

// parseMemAccessList parses zero or more '.field' / '(args)' /
// '[index]' suffixes. It never signals failure of the whole chain: if
// an access token is seen but its payload can't be parsed (e.g. '.'
// not followed by an identifier), it simply stops and leaves the
// offending token for whatever production called it to deal with,
// since there is no recovery point declared below the Expr level.
func (p *Parser) parseMemAccessList() []cst.MemAccess {
	var out []cst.MemAccess
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			idTok := p.cur()
			if !isIdentToken(idTok.Kind) {
				return out
			}
			p.advance()
			out = append(out, cst.MemAccess{Kind: cst.MemField, Field: cst.IdentFromToken(idTok)})
		case p.at(token.LParen):
			p.advance()
			args := p.parseExprCommaList(token.RParen)
			out = append(out, cst.MemAccess{Kind: cst.MemCall, Args: args})
		case p.at(token.LBracket):
			p.advance()
			idxNode := p.expr()
			if p.at(token.RBracket) {
				p.advance()
			}
			out = append(out, cst.MemAccess{Kind: cst.MemIndex, Index: idxNode})
		default:
			return out
		}
	}
}

// parseExprCommaList parses Comma<Expr> up to and including close,
// accepting zero elements and a trailing comma, per the spec's
// Comma<E> grammar rule.
func (p *Parser) parseExprCommaList(close token.Kind) []cst.Node[cst.Expr] {
	var items []cst.Node[cst.Expr]
	if p.at(close) {
		p.advance()
		return items
	}
	for {
		items = append(items, p.expr())
		if p.at(token.Comma) {
			p.advance()
			if p.at(close) {
				p.advance()
				return items
			}
			continue
		}
		if p.at(close) {
			p.advance()
		}
		return items
	}
}

// identToAdd synthesizes an Add whose Primary is a bare Name built
// from id, with access appended as its Member suffix chain. This is
// the "ident to add" helper the spec's design notes call for, used by
// the extended-has special case.
func (p *Parser) identToAdd(start int, id cst.Ident, access []cst.MemAccess) cst.Node[cst.Add] {
	primary := cst.Primary{Kind: cst.PrimaryName, Name: some(p, start, cst.Name{Name: id})}
	member := cst.Member{Item: some(p, start, primary), Access: access}
	unary := cst.Unary{Item: some(p, start, member)}
	mult := cst.Mult{Initial: some(p, start, unary)}
	add := cst.Add{Initial: some(p, start, mult)}
	return some(p, start, add)
}

// identToExpr is identToAdd's "ident to expr" counterpart, used by the
// if-keyed RecInit special case: it wraps the synthesized Add all the
// way up through Relation/And/Or to a full Expr.
func (p *Parser) identToExpr(start int, id cst.Ident, access []cst.MemAccess) cst.Node[cst.Expr] {
	addNode := p.identToAdd(start, id, access)
	relation := cst.Relation{Kind: cst.RelationCommon, Initial: addNode}
	and := cst.And{Initial: some(p, start, relation)}
	or := cst.Or{Initial: some(p, start, and)}
	expr := cst.Expr{Kind: cst.ExprOr, Or: some(p, start, or)}
	return some(p, start, expr)
}
