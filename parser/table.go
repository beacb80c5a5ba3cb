package parser

import (
	"adqltap/ast"
	"adqltap/token"
)

// parseTableExpr parses a FROM-clause table reference, including any chain
// of JOINs applied to it (left-associative, so `a JOIN b JOIN c` parses as
// `(a JOIN b) JOIN c`).
func (p *Parser) parseTableExpr() ast.TableExpr {
	left := p.parseTablePrimary()
	for {
		natural := false
		if p.curIs(token.NATURAL) {
			natural = true
			p.advance()
		}
		join, ok := p.joinTypeAhead()
		if !ok {
			if natural {
				p.errorf("expected JOIN after NATURAL")
			}
			return left
		}
		p.consumeJoinKeyword(join)
		right := p.parseTablePrimary()
		jt := &ast.JoinedTable{Left: left, Right: right, Join: join, Natural: natural, Begin: left.Pos(), EndP: right.End()}
		if !natural {
			if p.curIs(token.ON) {
				p.advance()
				jt.On = p.parseExpr()
				jt.EndP = jt.On.End()
			} else if p.curIs(token.USING) {
				p.advance()
				p.expect(token.LPAREN)
				jt.Using = append(jt.Using, p.expect(token.IDENT).Value)
				for p.curIs(token.COMMA) {
					p.advance()
					jt.Using = append(jt.Using, p.expect(token.IDENT).Value)
				}
				jt.EndP = p.cur.Pos
				p.expect(token.RPAREN)
			}
		}
		left = jt
	}
}

// joinTypeAhead reports which join type the current token introduces,
// without consuming anything, defaulting a bare JOIN/CROSS JOIN pairing to
// inner/cross respectively.
func (p *Parser) joinTypeAhead() (ast.JoinType, bool) {
	switch p.cur.Type {
	case token.JOIN:
		return ast.InnerJoin, true
	case token.INNER:
		return ast.InnerJoin, true
	case token.LEFT:
		return ast.LeftJoin, true
	case token.RIGHT:
		return ast.RightJoin, true
	case token.FULL:
		return ast.FullJoin, true
	case token.CROSS:
		return ast.CrossJoin, true
	}
	return 0, false
}

func (p *Parser) consumeJoinKeyword(jt ast.JoinType) {
	switch jt {
	case ast.InnerJoin:
		if p.curIs(token.INNER) {
			p.advance()
		}
		p.expect(token.JOIN)
	case ast.LeftJoin:
		p.expect(token.LEFT)
		if p.curIs(token.OUTER) {
			p.advance()
		}
		p.expect(token.JOIN)
	case ast.RightJoin:
		p.expect(token.RIGHT)
		if p.curIs(token.OUTER) {
			p.advance()
		}
		p.expect(token.JOIN)
	case ast.FullJoin:
		p.expect(token.FULL)
		if p.curIs(token.OUTER) {
			p.advance()
		}
		p.expect(token.JOIN)
	case ast.CrossJoin:
		p.expect(token.CROSS)
		p.expect(token.JOIN)
	}
}

func (p *Parser) parseTablePrimary() ast.TableExpr {
	begin := p.cur.Pos
	if p.curIs(token.LPAREN) {
		p.advance()
		if p.curIs(token.SELECT) || p.curIs(token.LPAREN) {
			q := p.parseQuery()
			end := p.cur.Pos
			p.expect(token.RPAREN)
			alias := p.parseOptionalAlias()
			return &ast.SubQueryRef{Query: q, Alias: alias, Begin: begin, EndP: end}
		}
		inner := p.parseTableExpr()
		end := p.cur.Pos
		p.expect(token.RPAREN)
		return &ast.ParenTableExpr{Inner: inner, Begin: begin, EndP: end}
	}

	first := p.expect(token.IDENT)
	parts := []string{first.Value}
	quoted := []bool{first.Quoted}
	for p.curIs(token.DOT) {
		p.advance()
		item := p.expect(token.IDENT)
		parts = append(parts, item.Value)
		quoted = append(quoted, item.Quoted)
	}
	mask := ast.MaskForQuoted(quoted, ast.TableCaseBits)
	ref := &ast.TableRef{Parts: parts, CaseMask: mask, Begin: begin, EndP: p.cur.Pos}
	ref.Alias = p.parseOptionalAlias()
	ref.EndP = p.cur.Pos
	return ref
}

func (p *Parser) parseOptionalAlias() string {
	if p.curIs(token.AS) {
		p.advance()
		return p.expect(token.IDENT).Value
	}
	if p.curIs(token.IDENT) {
		alias := p.cur.Value
		p.advance()
		return alias
	}
	return ""
}
