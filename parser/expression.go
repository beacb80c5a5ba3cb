package parser

import (
	"strings"

	"adqltap/ast"
	"adqltap/token"
)

// precedence climbing, lowest to highest.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precComparison // = <> < > <= >= LIKE BETWEEN IN IS
	precConcat     // ||
	precAdd        // + -
	precMul        // * /
	precUnary
)

func precedenceOf(t token.Token) int {
	switch t {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE:
		return precComparison
	case token.CONCAT:
		return precConcat
	case token.PLUS, token.MINUS:
		return precAdd
	case token.ASTERISK, token.SLASH:
		return precMul
	}
	return precLowest
}

// parseExpr is the entry point for any ADQL value expression or predicate.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinaryExpr(precLowest)
}

func (p *Parser) parseBinaryExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()

	for {
		left = p.parsePostfixPredicate(left, minPrec)

		prec := precedenceOf(p.cur.Type)
		if prec == precLowest || prec <= minPrec {
			break
		}
		op := p.cur.Type
		p.advance()
		right := p.parseBinaryExpr(prec)
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Begin: left.Pos(), EndP: right.End()}
	}
	return left
}

// parsePostfixPredicate handles the predicates that follow an already
// parsed operand and bind at roughly comparison precedence: [NOT] BETWEEN,
// [NOT] IN, [NOT] LIKE, IS [NOT] NULL. These are looped so `x NOT IN (...)
// AND y` composes correctly with parseBinaryExpr's precedence climbing.
func (p *Parser) parsePostfixPredicate(x ast.Expr, minPrec int) ast.Expr {
	if minPrec >= precComparison {
		return x
	}
	for {
		not := false
		if p.curIs(token.NOT) {
			// Only consume NOT here if it is followed by one of the
			// postfix-predicate keywords; otherwise it belongs to a
			// higher-level NOT <expr> and must be left alone.
			switch p.peekAfterNot() {
			case token.BETWEEN, token.IN, token.LIKE:
			default:
				return x
			}
			not = true
			p.advance()
		}
		switch p.cur.Type {
		case token.BETWEEN:
			p.advance()
			low := p.parseBinaryExpr(precAnd)
			p.expect(token.AND)
			high := p.parseBinaryExpr(precComparison)
			x = &ast.BetweenExpr{X: x, Not: not, Low: low, High: high, Begin: x.Pos(), EndP: high.End()}
			continue
		case token.IN:
			p.advance()
			begin := x.Pos()
			p.expect(token.LPAREN)
			in := &ast.InExpr{X: x, Not: not, Begin: begin}
			if p.curIs(token.SELECT) {
				sub := p.parseQuery()
				in.Subquery = sub
			} else {
				in.List = append(in.List, p.parseExpr())
				for p.curIs(token.COMMA) {
					p.advance()
					in.List = append(in.List, p.parseExpr())
				}
			}
			in.EndP = p.cur.Pos
			p.expect(token.RPAREN)
			x = in
			continue
		case token.LIKE:
			p.advance()
			pattern := p.parseBinaryExpr(precConcat)
			like := &ast.LikeExpr{X: x, Not: not, Pattern: pattern, Begin: x.Pos(), EndP: pattern.End()}
			if p.curIs(token.IDENT) && strings.EqualFold(p.cur.Value, "ESCAPE") {
				p.advance()
				like.Escape = p.parseBinaryExpr(precConcat)
				like.EndP = like.Escape.End()
			}
			x = like
			continue
		case token.IS:
			if not {
				// "IS" never follows a consumed NOT in this grammar; back
				// out is unreachable because peekAfterNot only allows
				// BETWEEN/IN/LIKE. Kept unreachable defensively.
			}
			p.advance()
			isNot := false
			if p.curIs(token.NOT) {
				isNot = true
				p.advance()
			}
			end := p.cur.Pos
			p.expect(token.NULL)
			x = &ast.IsNullExpr{X: x, Not: isNot, Begin: x.Pos(), EndP: end}
			continue
		}
		return x
	}
}

// peekAfterNot reports the token kind that would follow a NOT without
// consuming anything. The current token is NOT; the token after it is read
// through lexer.Peek, which returns the lexer's next token without
// advancing.
func (p *Parser) peekAfterNot() token.Token {
	return p.lexer.Peek().Type
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	switch p.cur.Type {
	case token.NOT:
		begin := p.cur.Pos
		p.advance()
		x := p.parseBinaryExpr(precNot)
		return &ast.UnaryExpr{Op: token.NOT, X: x, Begin: begin, EndP: x.End()}
	case token.MINUS, token.PLUS:
		op := p.cur.Type
		begin := p.cur.Pos
		p.advance()
		x := p.parseBinaryExpr(precUnary)
		return &ast.UnaryExpr{Op: op, X: x, Begin: begin, EndP: x.End()}
	case token.EXISTS:
		begin := p.cur.Pos
		p.advance()
		p.expect(token.LPAREN)
		sub := p.parseQuery()
		end := p.cur.Pos
		p.expect(token.RPAREN)
		return &ast.ExistsExpr{Subquery: sub, Begin: begin, EndP: end}
	}
	return p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	begin := p.cur.Pos
	switch p.cur.Type {
	case token.INT, token.FLOAT:
		isFloat := p.cur.Type == token.FLOAT
		text := p.cur.Value
		p.advance()
		return &ast.NumericLiteral{Text: text, Float: isFloat, Begin: begin, EndP: p.cur.Pos}
	case token.STRING:
		v := p.cur.Value
		p.advance()
		return &ast.StringLiteral{Value: v, Begin: begin, EndP: p.cur.Pos}
	case token.TRUE, token.FALSE:
		v := p.cur.Type == token.TRUE
		p.advance()
		return &ast.BooleanLiteral{Value: v, Begin: begin, EndP: p.cur.Pos}
	case token.NULL:
		p.advance()
		return &ast.NullLiteral{Begin: begin, EndP: p.cur.Pos}
	case token.PARAM:
		name := strings.TrimPrefix(p.cur.Value, ":")
		if name == "?" {
			name = ""
		}
		p.advance()
		return &ast.ParamRef{Name: name, Begin: begin, EndP: p.cur.Pos}
	case token.LPAREN:
		p.advance()
		if p.curIs(token.SELECT) || p.curIs(token.LPAREN) && p.subqueryAhead() {
			sub := p.parseQuery()
			end := p.cur.Pos
			p.expect(token.RPAREN)
			return &ast.SubqueryExpr{Query: sub, Begin: begin, EndP: end}
		}
		x := p.parseExpr()
		end := p.cur.Pos
		p.expect(token.RPAREN)
		return &ast.ParenExpr{X: x, Begin: begin, EndP: end}
	case token.CASE:
		return p.parseCaseExpr()
	case token.CAST:
		return p.parseCastExpr()
	case token.IDENT:
		return p.parseIdentOrCall()
	}
	p.errorf("unexpected token %s %q in expression", p.cur.Type, p.cur.Value)
	p.advance()
	return &ast.NullLiteral{Begin: begin, EndP: p.cur.Pos}
}

// subqueryAhead is only reached for a nested parenthesized query expression
// such as ((SELECT ...) UNION (SELECT ...)); it is conservative and treats
// any further LPAREN as potentially introducing a subquery, deferring the
// real decision to parseQuery/parseQueryPrimary.
func (p *Parser) subqueryAhead() bool { return true }

func (p *Parser) parseCaseExpr() ast.Expr {
	begin := p.cur.Pos
	p.advance()
	ce := &ast.CaseExpr{Begin: begin}
	if !p.curIs(token.WHEN) {
		ce.Operand = p.parseExpr()
	}
	for p.curIs(token.WHEN) {
		p.advance()
		cond := p.parseExpr()
		p.expect(token.THEN)
		result := p.parseExpr()
		ce.Whens = append(ce.Whens, &ast.WhenClause{Cond: cond, Result: result})
	}
	if p.curIs(token.ELSE) {
		p.advance()
		ce.Else = p.parseExpr()
	}
	ce.EndP = p.cur.Pos
	p.expect(token.END)
	return ce
}

func (p *Parser) parseCastExpr() ast.Expr {
	begin := p.cur.Pos
	p.advance()
	p.expect(token.LPAREN)
	x := p.parseExpr()
	p.expect(token.AS)
	typeName := p.expect(token.IDENT).Value
	if p.curIs(token.LPAREN) {
		// type parameters such as VARCHAR(20) are accepted syntactically
		// and folded into the type name; no check of the target type is
		// made (the checker types an unrecognised name as UNKNOWN).
		p.advance()
		typeName += "("
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			typeName += p.cur.Value
			p.advance()
		}
		typeName += ")"
		p.expect(token.RPAREN)
	}
	end := p.cur.Pos
	p.expect(token.RPAREN)
	return &ast.CastExpr{X: x, Type: typeName, Begin: begin, EndP: end}
}

// geometryArity lists each geometry predicate/function's fixed argument
// count; REGION is variadic (1+ args) so it is excluded and checked only
// for a minimum. The optional leading coordinate-system literal of POINT,
// CIRCLE, BOX and POLYGON is not counted: parseGeometryCall drops it.
var geometryArity = map[ast.GeometryName]int{
	ast.GeomPoint:      2,
	ast.GeomCircle:     3,
	ast.GeomBox:        4,
	ast.GeomPolygon:    -1, // variadic, pairs of coordinates
	ast.GeomCentroid:   1,
	ast.GeomDistance:   2,
	ast.GeomArea:       1,
	ast.GeomCoord1:     1,
	ast.GeomCoord2:     1,
	ast.GeomCoordsys:   1,
	ast.GeomContains:  2,
	ast.GeomIntersect: 2,
}

func geometryNameFor(ident string) (ast.GeometryName, bool) {
	switch strings.ToUpper(ident) {
	case "POINT":
		return ast.GeomPoint, true
	case "CIRCLE":
		return ast.GeomCircle, true
	case "BOX":
		return ast.GeomBox, true
	case "POLYGON":
		return ast.GeomPolygon, true
	case "REGION":
		return ast.GeomRegion, true
	case "CENTROID":
		return ast.GeomCentroid, true
	case "DISTANCE":
		return ast.GeomDistance, true
	case "AREA":
		return ast.GeomArea, true
	case "COORD1":
		return ast.GeomCoord1, true
	case "COORD2":
		return ast.GeomCoord2, true
	case "COORDSYS":
		return ast.GeomCoordsys, true
	case "CONTAINS":
		return ast.GeomContains, true
	case "INTERSECTS":
		return ast.GeomIntersect, true
	}
	return "", false
}

// parseIdentOrCall disambiguates a leading identifier into a dotted column
// reference, a `qualifier.*` select-all marker, a geometry predicate call
// (by name, independent of keyword status since these names are plain
// IDENTs in the lexer), or a general function call.
func (p *Parser) parseIdentOrCall() ast.Expr {
	begin := p.cur.Pos
	first := p.cur.Value
	firstQuoted := p.cur.Quoted
	p.advance()

	if p.curIs(token.LPAREN) {
		if geomName, ok := geometryNameFor(first); ok {
			return p.parseGeometryCall(geomName, begin)
		}
		return p.parseFunctionCall(first, begin)
	}

	parts := []string{first}
	quoted := []bool{firstQuoted}
	for p.curIs(token.DOT) {
		p.advance()
		if p.curIs(token.ASTERISK) {
			p.advance()
			return &selectAllQualified{Qualifier: strings.Join(parts, "."), begin: begin, end: p.cur.Pos}
		}
		item := p.expect(token.IDENT)
		parts = append(parts, item.Value)
		quoted = append(quoted, item.Quoted)
	}
	mask := ast.MaskForQuoted(quoted, ast.ColumnCaseBits)
	return &ast.ColumnReference{Parts: parts, CaseMask: mask, Begin: begin, EndP: p.cur.Pos}
}

func (p *Parser) parseFunctionCall(name string, begin token.Pos) ast.Expr {
	p.expect(token.LPAREN)
	fc := &ast.FunctionCall{Name: name, Begin: begin}
	if p.curIs(token.DISTINCT) {
		fc.Distinct = true
		p.advance()
	}
	if !p.curIs(token.RPAREN) {
		if p.curIs(token.ASTERISK) {
			p.advance()
		} else {
			fc.Args = append(fc.Args, p.parseExpr())
			for p.curIs(token.COMMA) {
				p.advance()
				fc.Args = append(fc.Args, p.parseExpr())
			}
		}
	}
	fc.EndP = p.cur.Pos
	p.expect(token.RPAREN)
	return fc
}

func (p *Parser) parseGeometryCall(name ast.GeometryName, begin token.Pos) ast.Expr {
	p.expect(token.LPAREN)
	gf := &ast.GeometryFunction{Name: name, Begin: begin}
	if !p.curIs(token.RPAREN) {
		gf.Args = append(gf.Args, p.parseExpr())
		for p.curIs(token.COMMA) {
			p.advance()
			gf.Args = append(gf.Args, p.parseExpr())
		}
	}
	switch name {
	case ast.GeomPoint, ast.GeomCircle, ast.GeomBox, ast.GeomPolygon:
		if len(gf.Args) > 0 {
			if _, ok := gf.Args[0].(*ast.StringLiteral); ok {
				gf.Args = gf.Args[1:]
			}
		}
	}
	want, fixed := geometryArity[name]
	if !fixed && len(gf.Args) < 1 {
		p.errorf("%s expects at least 1 argument, got %d", name, len(gf.Args))
	} else if want >= 0 && len(gf.Args) != want {
		p.errorf("%s expects %d argument(s), got %d", name, want, len(gf.Args))
	}
	gf.EndP = p.cur.Pos
	p.expect(token.RPAREN)
	return gf
}
