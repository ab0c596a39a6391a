// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package parser

import (
	"github.com/holomush/cedarcst/cst"
	"github.com/holomush/cedarcst/reporter"
	"github.com/holomush/cedarcst/token"
)

// recoverPolicy is the Policy-level sync point: skip to the next ';'
// (or EOF), report a Recovered record, and yield a PolicyError node in
// tolerant mode or None in strict mode. Both modes always append the
// record; only the returned CST shape differs.
func (p *Parser) recoverPolicy(startTok token.Token) cst.Node[cst.Policy] {
	for !p.at(token.Semi) && !p.at(token.EOF) {
		p.advance()
	}
	endTok := p.cur()
	if p.at(token.Semi) {
		p.advance()
	}
	p.sink.Report(reporter.RecoveryRecord{
		Kind:    reporter.Recovered,
		Start:   startTok.Pos,
		End:     endTok.Pos,
		Message: "expected a policy statement",
	})
	if p.tolerant {
		return some(p, startTok.Pos.Offset, cst.Policy{Error: true})
	}
	return none[cst.Policy](p, startTok.Pos.Offset)
}

// recoverExpr is the Expression-level sync point. Unlike the policy
// level there is no declared token to skip to; it discards at most the
// one offending token (to guarantee the caller always makes forward
// progress) and yields ErrorExpr in tolerant mode or None in strict
// mode.
func (p *Parser) recoverExpr(startTok token.Token) cst.Node[cst.Expr] {
	badTok := p.cur()
	if !p.at(token.EOF) {
		p.advance()
	}
	p.sink.Report(reporter.RecoveryRecord{
		Kind:    reporter.Recovered,
		Start:   startTok.Pos,
		End:     badTok.Pos,
		Message: "expected an expression",
	})
	if p.tolerant {
		return some(p, startTok.Pos.Offset, cst.Expr{Kind: cst.ExprError})
	}
	return none[cst.Expr](p, startTok.Pos.Offset)
}
