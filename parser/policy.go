// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package parser

import (
	"github.com/holomush/cedarcst/cst"
	"github.com/holomush/cedarcst/token"
)

// policiesNode parses every policy in the input up to EOF. Each
// element comes from policyNode, which always makes forward progress
// (either a full policy ending at a consumed ';', or the Policy-level
// recovery skip), so this loop terminates.
func (p *Parser) policiesNode() cst.Node[cst.Policies] {
	start := p.startPos()
	var items []cst.Node[cst.Policy]
	for !p.at(token.EOF) {
		items = append(items, p.policyNode())
	}
	return some(p, start, cst.Policies{Items: items})
}

// policyNode is the Policy-level recovery point.
func (p *Parser) policyNode() cst.Node[cst.Policy] {
	startTok := p.cur()
	pv, ok := p.parsePolicyRaw()
	if ok {
		return some(p, startTok.Pos.Offset, pv)
	}
	return p.recoverPolicy(startTok)
}

func (p *Parser) parsePolicyRaw() (cst.Policy, bool) {
	var annotations []cst.Node[cst.Annotation]
	for p.at(token.At) {
		aStart := p.startPos()
		av, ok := p.parseAnnotation()
		annotations = append(annotations, wrap(p, aStart, av, ok))
		if !ok {
			break
		}
	}

	effStart := p.startPos()
	effTok := p.cur()
	if !isIdentToken(effTok.Kind) {
		return cst.Policy{Annotations: annotations}, false
	}
	p.advance()
	effect := some(p, effStart, cst.IdentFromToken(effTok))

	if !p.at(token.LParen) {
		return cst.Policy{Annotations: annotations, Effect: effect}, false
	}
	p.advance()

	var variables []cst.Node[cst.VariableDef]
	if !p.at(token.RParen) {
		for {
			vStart := p.startPos()
			vv, ok := p.parseVariableDef()
			variables = append(variables, wrap(p, vStart, vv, ok))
			if !ok {
				break
			}
			if p.at(token.Comma) {
				p.advance()
				if p.at(token.RParen) {
					break
				}
				continue
			}
			break
		}
	}
	if !p.at(token.RParen) {
		return cst.Policy{Annotations: annotations, Effect: effect, Variables: variables}, false
	}
	p.advance()

	var conds []cst.Node[cst.Cond]
	for p.at(token.KwWhen) || p.at(token.KwUnless) {
		cStart := p.startPos()
		cv, ok := p.parseCond()
		conds = append(conds, wrap(p, cStart, cv, ok))
		if !ok {
			break
		}
	}

	policy := cst.Policy{Annotations: annotations, Effect: effect, Variables: variables, Conds: conds}
	if !p.at(token.Semi) {
		return policy, false
	}
	p.advance()
	return policy, true
}

// parseAnnotation parses '@' AnyIdent ('(' STRINGLIT ')')?.
func (p *Parser) parseAnnotation() (cst.Annotation, bool) {
	if !p.at(token.At) {
		return cst.Annotation{}, false
	}
	p.advance()
	keyStart := p.startPos()
	idTok := p.cur()
	if !isIdentToken(idTok.Kind) {
		return cst.Annotation{}, false
	}
	p.advance()
	keyNode := some(p, keyStart, cst.IdentFromToken(idTok))

	var valueNode *cst.Node[cst.Str]
	if p.at(token.LParen) {
		p.advance()
		vStart := p.startPos()
		if p.at(token.String) {
			strTok := p.advance()
			v := some(p, vStart, stringFromToken(strTok))
			valueNode = &v
		} else {
			v := none[cst.Str](p, vStart)
			valueNode = &v
		}
		if !p.expectKind(token.RParen) {
			return cst.Annotation{Key: keyNode, Value: valueNode}, false
		}
	}
	return cst.Annotation{Key: keyNode, Value: valueNode}, true
}

// parseVariableDef parses one `principal`/`action`/`resource` slot:
// an identifier, then an optional ': Name', optional 'is Add', and
// optional trailing RelOp Expr pair.
func (p *Parser) parseVariableDef() (cst.VariableDef, bool) {
	varStart := p.startPos()
	idTok := p.cur()
	if !isIdentToken(idTok.Kind) {
		return cst.VariableDef{}, false
	}
	p.advance()
	variable := some(p, varStart, cst.IdentFromToken(idTok))

	var unusedType *cst.Node[cst.Name]
	if p.at(token.Colon) {
		p.advance()
		nStart := p.startPos()
		nv, ok := p.parseNameRaw()
		n := wrap(p, nStart, nv, ok)
		unusedType = &n
	}

	var entityType *cst.Node[cst.Add]
	if p.at(token.KwIs) {
		p.advance()
		eStart := p.startPos()
		ev, ok := p.parseAdd()
		n := wrap(p, eStart, ev, ok)
		entityType = &n
	}

	var ineq *cst.VariableIneq
	if p.isRelOpStart() {
		op := p.consumeRelOp()
		exprNode := p.expr()
		ineq = &cst.VariableIneq{Op: op, Expr: exprNode}
	}

	return cst.VariableDef{
		Variable:       variable,
		UnusedTypeName: unusedType,
		EntityType:     entityType,
		Ineq:           ineq,
	}, true
}

// parseCond parses a `when { Expr? }` or `unless { Expr? }` clause. A
// syntactically empty body parses successfully with Expr left nil,
// per the spec's deliberately-permissive Cond grammar.
func (p *Parser) parseCond() (cst.Cond, bool) {
	if !p.at(token.KwWhen) && !p.at(token.KwUnless) {
		return cst.Cond{}, false
	}
	kwStart := p.startPos()
	kwTok := p.advance()
	kwNode := some(p, kwStart, cst.IdentFromToken(kwTok))

	if !p.expectKind(token.LBrace) {
		return cst.Cond{Keyword: kwNode}, false
	}
	var exprNode *cst.Node[cst.Expr]
	if !p.at(token.RBrace) {
		n := p.expr()
		exprNode = &n
	}
	if !p.expectKind(token.RBrace) {
		return cst.Cond{Keyword: kwNode, Expr: exprNode}, false
	}
	return cst.Cond{Keyword: kwNode, Expr: exprNode}, true
}
