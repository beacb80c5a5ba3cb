// Package parser implements a recursive-descent parser for ADQL, producing
// an *ast.Query. It uses a pooled Parser holding a lexer, a running error
// list, and one token of lookahead. The grammar itself is ADQL's: a single
// SELECT or a tree of UNION/INTERSECT/EXCEPT SELECTs, TOP instead of a
// bare LIMIT, geometry predicate functions, and a trailing bare OFFSET.
package parser

import (
	"fmt"
	"strconv"
	"sync"

	"adqltap/ast"
	"adqltap/lexer"
	"adqltap/token"
)

// ParseError is one syntax error encountered while parsing.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Parser holds parsing state: the lexer, accumulated errors, and the
// current lookahead token.
type Parser struct {
	lexer  *lexer.Lexer
	errors []error
	cur    token.Item
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// New creates a Parser for the given ADQL source text.
func New(input string) *Parser {
	p := &Parser{lexer: lexer.New(input)}
	p.advance()
	return p
}

// Get returns a pooled Parser for the given input.
func Get(input string) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input)
	p.errors = p.errors[:0]
	p.advance()
	return p
}

// Put returns p (and its lexer) to their pools. Any AST it produced remains
// valid; only p itself is reusable afterwards.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

// Parse parses a single ADQL query.
func Parse(input string) (*ast.Query, []error) {
	p := New(input)
	q := p.parseQuery()
	if p.cur.Type != token.EOF {
		p.errorf("unexpected trailing input %q", p.cur.Value)
	}
	return q, p.errors
}

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
}

func (p *Parser) curIs(t token.Token) bool { return p.cur.Type == t }

func (p *Parser) expect(t token.Token) token.Item {
	if !p.curIs(t) {
		p.errorf("expected %s, got %s %q", t, p.cur.Type, p.cur.Value)
		return p.cur
	}
	item := p.cur
	p.advance()
	return item
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, &ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)})
}

// parseQuery parses the top level: a query body followed by an optional
// outer ORDER BY and bare OFFSET.
func (p *Parser) parseQuery() *ast.Query {
	begin := p.cur.Pos
	body := p.parseQueryExpr()

	q := &ast.Query{Body: body, Begin: begin}

	if p.curIs(token.ORDER) {
		q.OrderBy = p.parseOrderBy()
	}
	if p.curIs(token.OFFSET) {
		offBegin := p.cur.Pos
		p.advance()
		n := p.parseIntLiteral()
		q.Offset = &ast.OffsetClause{Count: n, Begin: offBegin, EndP: p.cur.Pos}
	}
	q.EndP = p.cur.Pos
	return q
}

// parseQueryExpr parses a set-operation chain of SELECTs, left-associative:
// select (UNION|INTERSECT|EXCEPT [ALL] select)*. TOP is only legal directly
// on a SelectQuery operand; the grammar never lets a SetOperation itself
// carry one, matching the Open Question resolution that LIMIT/TOP on a set
// operation is rejected at parse time, not by the checker.
func (p *Parser) parseQueryExpr() ast.QueryExpr {
	left := p.parseQueryPrimary()
	for p.curIs(token.UNION) || p.curIs(token.INTERSECT) || p.curIs(token.EXCEPT) {
		begin := left.Pos()
		var op ast.SetOpType
		switch p.cur.Type {
		case token.UNION:
			op = ast.Union
		case token.INTERSECT:
			op = ast.Intersect
		case token.EXCEPT:
			op = ast.Except
		}
		p.advance()
		all := false
		if p.curIs(token.ALL) {
			all = true
			p.advance()
		}
		right := p.parseQueryPrimary()
		left = &ast.SetOperation{Op: op, All: all, Left: left, Right: right, Begin: begin, EndP: right.End()}
	}
	return left
}

func (p *Parser) parseQueryPrimary() ast.QueryExpr {
	if p.curIs(token.LPAREN) {
		begin := p.cur.Pos
		p.advance()
		inner := p.parseQueryExpr()
		end := p.cur.Pos
		p.expect(token.RPAREN)
		return &ast.ParenQueryExpr{Inner: inner, Begin: begin, EndP: end}
	}
	return p.parseSelect()
}

// parseSelect parses a single SELECT statement body, without any outer
// ORDER BY/OFFSET (those belong to parseQuery).
func (p *Parser) parseSelect() *ast.SelectQuery {
	begin := p.cur.Pos
	p.expect(token.SELECT)

	sq := &ast.SelectQuery{Begin: begin}

	if p.curIs(token.DISTINCT) {
		sq.Distinct = true
		p.advance()
	} else if p.curIs(token.ALL) {
		p.advance()
	}

	if p.curIs(token.TOP) {
		p.advance()
		n := p.parseIntLiteral()
		sq.Top = &n
	}

	sq.SelectList = p.parseSelectList()

	if p.curIs(token.FROM) {
		p.advance()
		sq.From = p.parseTableExpr()
	}

	if p.curIs(token.WHERE) {
		p.advance()
		sq.Where = p.parseExpr()
	}

	if p.curIs(token.GROUP) {
		p.advance()
		p.expect(token.BY)
		sq.GroupBy = append(sq.GroupBy, p.parseExpr())
		for p.curIs(token.COMMA) {
			p.advance()
			sq.GroupBy = append(sq.GroupBy, p.parseExpr())
		}
	}

	if p.curIs(token.HAVING) {
		p.advance()
		sq.Having = p.parseExpr()
	}

	sq.EndP = p.cur.Pos
	return sq
}

func (p *Parser) parseIntLiteral() int {
	item := p.expect(token.INT)
	n, err := strconv.Atoi(item.Value)
	if err != nil {
		// Overflow or malformed literal: yield 0 rather than propagate a Go
		// parse error through as a confusing ADQL syntax error.
		return 0
	}
	return n
}

func (p *Parser) parseSelectList() []ast.SelectItem {
	items := []ast.SelectItem{p.parseSelectItem()}
	for p.curIs(token.COMMA) {
		p.advance()
		items = append(items, p.parseSelectItem())
	}
	return items
}

func (p *Parser) parseSelectItem() ast.SelectItem {
	begin := p.cur.Pos
	if p.curIs(token.ASTERISK) {
		p.advance()
		return &ast.SelectAllColumns{Begin: begin, EndP: p.cur.Pos}
	}
	// alias.* is ambiguous with a plain identifier until the DOT ASTERISK
	// is seen; peek by parsing the expression and checking for a trailing
	// qualifier pattern handled inside parsePrimaryExpr instead.
	expr := p.parseExpr()
	if sa, ok := expr.(*selectAllQualified); ok {
		return &ast.SelectAllColumns{Qualifier: sa.Qualifier, Begin: begin, EndP: p.cur.Pos}
	}
	alias := ""
	if p.curIs(token.AS) {
		p.advance()
		alias = p.expect(token.IDENT).Value
	} else if p.curIs(token.IDENT) && !isClauseKeyword(p.cur.Type) {
		alias = p.cur.Value
		p.advance()
	}
	return &ast.AliasedSelectItem{Expr: expr, Alias: alias, Begin: begin, EndP: p.cur.Pos}
}

// selectAllQualified is an internal-only marker never placed in the final
// tree; parsePrimaryExpr returns it for `ident.*` so parseSelectItem can
// translate it into a SelectAllColumns instead of a ColumnReference.
type selectAllQualified struct {
	// The embedded interface is always nil; it only supplies ast.Expr's
	// unexported marker methods, which a type outside package ast cannot
	// declare itself.
	ast.Expr
	Qualifier  string
	begin, end token.Pos
}

func (s *selectAllQualified) Pos() token.Pos { return s.begin }
func (s *selectAllQualified) End() token.Pos { return s.end }

func isClauseKeyword(t token.Token) bool {
	switch t {
	case token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER,
		token.UNION, token.INTERSECT, token.EXCEPT, token.OFFSET, token.COMMA,
		token.EOF, token.ON, token.USING, token.JOIN, token.INNER, token.LEFT,
		token.RIGHT, token.FULL, token.CROSS, token.NATURAL, token.RPAREN:
		return true
	}
	return false
}

// parseOrderBy parses ORDER BY item [ASC|DESC] (, item [ASC|DESC])*. Each
// item is either a 1-based ordinal position (a bare integer literal) or an
// arbitrary expression; the checker, not the parser, validates ordinal
// bounds and raises AmbiguousOrderPosition.
func (p *Parser) parseOrderBy() []*ast.OrderByItem {
	p.expect(token.ORDER)
	p.expect(token.BY)
	var items []*ast.OrderByItem
	for {
		begin := p.cur.Pos
		item := &ast.OrderByItem{Begin: begin}
		if p.curIs(token.INT) {
			item.Ordinal = p.parseIntLiteral()
		} else {
			item.Expr = p.parseExpr()
		}
		if p.curIs(token.DESC) {
			item.Desc = true
			p.advance()
		} else if p.curIs(token.ASC) {
			p.advance()
		}
		item.EndP = p.cur.Pos
		items = append(items, item)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return items
}
