// Package translate renders a checked ADQL AST into dialect-specific SQL
// text plus its bound parameter list. Translation is a pure function over
// (AST, Dialect): it never mutates the tree and never touches a backend.
package translate

import (
	"strconv"
	"strings"

	"adqltap/ast"
	"adqltap/checker"
	"adqltap/dialect"
	"adqltap/errs"
	"adqltap/token"
)

// Result is the output of Translate: the rendered SQL text and the
// positional parameter names collected from ParamRef nodes, in the order
// their placeholders appear in SQL.
type Result struct {
	SQL      string
	Bindings []string
}

// RowCap, when > 0, is the service-imposed row limit; per spec the
// effective limit becomes min(TOP, RowCap+1) so the executor can detect
// truncation.
type Options struct {
	Dialect dialect.Dialect
	RowCap  int
}

// Translate renders checked (the output of a checker.Checker.Check call)
// into SQL for opts.Dialect.
func Translate(checked *checker.CheckedQuery, opts Options) (*Result, error) {
	t := &translator{dialect: opts.Dialect, rowCap: opts.RowCap, funcRefs: checked.FuncRefs}
	t.query(checked.Query)
	if t.err != nil {
		return nil, t.err
	}
	return &Result{SQL: t.buf.String(), Bindings: t.bindings}, nil
}

type translator struct {
	dialect  dialect.Dialect
	rowCap   int
	buf      strings.Builder
	bindings []string
	err      error
	funcRefs map[*ast.FunctionCall]*checker.FunctionDef
}

func (t *translator) fail(err error) {
	if t.err == nil {
		t.err = err
	}
}

func (t *translator) write(s string) {
	if t.err != nil {
		return
	}
	t.buf.WriteString(s)
}

func (t *translator) query(q *ast.Query) {
	t.queryExpr(q.Body)

	if len(q.OrderBy) > 0 {
		t.write(" ORDER BY ")
		for i, item := range q.OrderBy {
			if i > 0 {
				t.write(", ")
			}
			if item.Ordinal > 0 {
				t.write(strconv.Itoa(item.Ordinal))
			} else {
				t.expr(item.Expr)
			}
			if item.Desc {
				t.write(" DESC")
			}
		}
	}

	var offset *int
	if q.Offset != nil {
		n := q.Offset.Count
		offset = &n
	}
	if offset != nil {
		clause := t.dialect.LimitOffset(nil, offset)
		if clause != "" {
			t.write(" ")
			t.write(clause)
		}
	}
}

func (t *translator) queryExpr(qe ast.QueryExpr) {
	switch q := qe.(type) {
	case *ast.SelectQuery:
		t.selectQuery(q)
	case *ast.SetOperation:
		t.queryExpr(q.Left)
		t.write(" ")
		t.write(q.Op.String())
		if q.All {
			t.write(" ALL")
		}
		t.write(" ")
		t.queryExpr(q.Right)
	case *ast.ParenQueryExpr:
		t.write("(")
		t.queryExpr(q.Inner)
		t.write(")")
	default:
		t.fail(errs.New(errs.SyntaxError, "unsupported query expression %T", qe))
	}
}

func (t *translator) selectQuery(s *ast.SelectQuery) {
	t.write("SELECT ")
	if s.Distinct {
		t.write("DISTINCT ")
	}

	limit := effectiveLimit(s.Top, t.rowCap)

	for i, item := range s.SelectList {
		if i > 0 {
			t.write(", ")
		}
		t.selectItem(item)
	}

	if s.From != nil {
		t.write(" FROM ")
		t.tableExpr(s.From)
	}
	if s.Where != nil {
		t.write(" WHERE ")
		t.expr(s.Where)
	}
	if len(s.GroupBy) > 0 {
		t.write(" GROUP BY ")
		for i, g := range s.GroupBy {
			if i > 0 {
				t.write(", ")
			}
			t.expr(g)
		}
	}
	if s.Having != nil {
		t.write(" HAVING ")
		t.expr(s.Having)
	}

	if limit != nil {
		clause := t.dialect.LimitOffset(limit, nil)
		if clause != "" {
			t.write(" ")
			t.write(clause)
		}
	}
}

// effectiveLimit implements spec.md §4.5's TOP/row-cap interaction: when
// both a query-supplied TOP and a service row cap are present, the
// translated limit is min(TOP, cap+1), the +1 letting the executor detect
// and flag truncation.
func effectiveLimit(top *int, rowCap int) *int {
	if top == nil && rowCap <= 0 {
		return nil
	}
	if top == nil {
		n := rowCap + 1
		return &n
	}
	if rowCap <= 0 {
		n := *top
		return &n
	}
	capped := rowCap + 1
	n := *top
	if capped < n {
		n = capped
	}
	return &n
}

func (t *translator) selectItem(item ast.SelectItem) {
	switch it := item.(type) {
	case *ast.SelectAllColumns:
		if it.Qualifier != "" {
			t.write(t.dialect.FoldIdentifier(it.Qualifier))
			t.write(".")
		}
		t.write("*")
	case *ast.AliasedSelectItem:
		t.expr(it.Expr)
		if it.Alias != "" {
			t.write(" AS ")
			t.write(t.dialect.QuoteIdentifier(it.Alias))
		}
	}
}

func (t *translator) tableExpr(te ast.TableExpr) {
	switch tb := te.(type) {
	case *ast.TableRef:
		t.dottedName(tb.Parts, tb.CaseMask, ast.TableCaseBits)
		if tb.Alias != "" {
			t.write(" AS ")
			t.write(t.dialect.QuoteIdentifier(tb.Alias))
		}
	case *ast.JoinedTable:
		t.tableExpr(tb.Left)
		t.write(" ")
		if tb.Natural {
			t.write("NATURAL ")
		}
		t.write(tb.Join.String())
		t.write(" ")
		t.tableExpr(tb.Right)
		if tb.On != nil {
			t.write(" ON ")
			t.expr(tb.On)
		}
		if len(tb.Using) > 0 {
			t.write(" USING (")
			for i, u := range tb.Using {
				if i > 0 {
					t.write(", ")
				}
				t.write(t.dialect.FoldIdentifier(u))
			}
			t.write(")")
		}
	case *ast.SubQueryRef:
		t.write("(")
		t.query(tb.Query)
		t.write(")")
		if tb.Alias != "" {
			t.write(" AS ")
			t.write(t.dialect.QuoteIdentifier(tb.Alias))
		}
	case *ast.ParenTableExpr:
		t.write("(")
		t.tableExpr(tb.Inner)
		t.write(")")
	default:
		t.fail(errs.New(errs.SyntaxError, "unsupported table expression %T", te))
	}
}

// dottedName renders parts (in source/left-to-right order, i.e. the
// reverse of the AST's right-to-left accessor order) honoring the
// per-part case-sensitivity bitmask. bits is ast.ColumnCaseBits for a
// ColumnReference or ast.TableCaseBits for a TableRef; the two differ
// because a TableRef has no column level.
func (t *translator) dottedName(parts []string, mask ast.CaseSensitivity, bits []ast.CaseSensitivity) {
	// parts is left-to-right (most to least qualified); the mask bit for
	// part at index i counting from the right is bits[len(bits)-1-i].
	offset := len(bits) - len(parts)
	for i, p := range parts {
		if i > 0 {
			t.write(".")
		}
		bit := bits[offset+i]
		if mask.Has(bit) {
			t.write(t.dialect.QuoteIdentifier(p))
		} else {
			t.write(t.dialect.FoldIdentifier(p))
		}
	}
}

func (t *translator) expr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.ColumnReference:
		t.dottedName(x.Parts, x.CaseMask, ast.ColumnCaseBits)
	case *ast.NumericLiteral:
		t.write(x.Text)
	case *ast.StringLiteral:
		t.write("'")
		t.write(strings.ReplaceAll(x.Value, "'", "''"))
		t.write("'")
	case *ast.BooleanLiteral:
		if x.Value {
			t.write("TRUE")
		} else {
			t.write("FALSE")
		}
	case *ast.NullLiteral:
		t.write("NULL")
	case *ast.ParamRef:
		t.bindings = append(t.bindings, x.Name)
		t.write("?")
	case *ast.UnaryExpr:
		t.write(opText(x.Op))
		t.write(" ")
		t.expr(x.X)
	case *ast.BinaryExpr:
		t.expr(x.Left)
		t.write(" ")
		t.write(opText(x.Op))
		t.write(" ")
		t.expr(x.Right)
	case *ast.ParenExpr:
		t.write("(")
		t.expr(x.X)
		t.write(")")
	case *ast.FunctionCall:
		t.functionCall(x)
	case *ast.GeometryFunction:
		t.geometryCall(x)
	case *ast.CaseExpr:
		t.caseExpr(x)
	case *ast.CastExpr:
		t.write("CAST(")
		t.expr(x.X)
		t.write(" AS ")
		t.write(x.Type)
		t.write(")")
	case *ast.BetweenExpr:
		t.expr(x.X)
		if x.Not {
			t.write(" NOT")
		}
		t.write(" BETWEEN ")
		t.expr(x.Low)
		t.write(" AND ")
		t.expr(x.High)
	case *ast.InExpr:
		t.inExpr(x)
	case *ast.LikeExpr:
		t.expr(x.X)
		if x.Not {
			t.write(" NOT")
		}
		t.write(" LIKE ")
		t.expr(x.Pattern)
		if x.Escape != nil {
			t.write(" ESCAPE ")
			t.expr(x.Escape)
		}
	case *ast.IsNullExpr:
		t.expr(x.X)
		t.write(" IS")
		if x.Not {
			t.write(" NOT")
		}
		t.write(" NULL")
	case *ast.ExistsExpr:
		t.write("EXISTS (")
		t.query(x.Subquery)
		t.write(")")
	case *ast.SubqueryExpr:
		t.write("(")
		t.query(x.Query)
		t.write(")")
	default:
		t.fail(errs.New(errs.SyntaxError, "unsupported expression %T", e))
	}
}

func (t *translator) functionCall(fc *ast.FunctionCall) {
	name := fc.Name
	if def, ok := t.funcRefs[fc]; ok && def.ImplRef != "" {
		name = def.ImplRef
	}
	t.write(name)
	t.write("(")
	if fc.Distinct {
		t.write("DISTINCT ")
	}
	if len(fc.Args) == 0 && strings.EqualFold(fc.Name, "COUNT") {
		t.write("*")
	}
	for i, a := range fc.Args {
		if i > 0 {
			t.write(", ")
		}
		t.expr(a)
	}
	t.write(")")
}

func (t *translator) geometryCall(gf *ast.GeometryFunction) {
	args := make([]string, len(gf.Args))
	for i, a := range gf.Args {
		inner := &translator{dialect: t.dialect, funcRefs: t.funcRefs}
		inner.expr(a)
		if inner.err != nil {
			t.fail(inner.err)
			return
		}
		args[i] = inner.buf.String()
		t.bindings = append(t.bindings, inner.bindings...)
	}
	sql, err := t.dialect.GeometryCall(gf.Name, args)
	if err != nil {
		t.fail(err)
		return
	}
	t.write(sql)
}

func (t *translator) caseExpr(c *ast.CaseExpr) {
	t.write("CASE")
	if c.Operand != nil {
		t.write(" ")
		t.expr(c.Operand)
	}
	for _, w := range c.Whens {
		t.write(" WHEN ")
		t.expr(w.Cond)
		t.write(" THEN ")
		t.expr(w.Result)
	}
	if c.Else != nil {
		t.write(" ELSE ")
		t.expr(c.Else)
	}
	t.write(" END")
}

func (t *translator) inExpr(in *ast.InExpr) {
	t.expr(in.X)
	if in.Not {
		t.write(" NOT")
	}
	t.write(" IN (")
	if in.Subquery != nil {
		t.query(in.Subquery)
	} else {
		for i, item := range in.List {
			if i > 0 {
				t.write(", ")
			}
			t.expr(item)
		}
	}
	t.write(")")
}

func opText(tok token.Token) string {
	switch tok {
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.ASTERISK:
		return "*"
	case token.SLASH:
		return "/"
	case token.CONCAT:
		return "||"
	case token.EQ:
		return "="
	case token.NEQ:
		return "<>"
	case token.LT:
		return "<"
	case token.LTE:
		return "<="
	case token.GT:
		return ">"
	case token.GTE:
		return ">="
	case token.AND:
		return "AND"
	case token.OR:
		return "OR"
	case token.NOT:
		return "NOT"
	}
	return tok.String()
}
