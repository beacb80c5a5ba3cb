// Package render turns an ADQL AST back into ADQL source text. It exists to
// support round-tripping (parse, optionally rewrite, render) without losing
// the geometry vocabulary or TOP/OFFSET placement that a generic SQL
// formatter would not know about.
package render

import (
	"bytes"
	"strings"

	"adqltap/ast"
	"adqltap/token"
)

// Options controls rendering behavior.
type Options struct {
	Uppercase bool // uppercase keywords
}

// DefaultOptions are the default rendering options.
var DefaultOptions = Options{Uppercase: true}

// Renderer writes ADQL source text from an AST.
type Renderer struct {
	buf  bytes.Buffer
	opts Options
}

// New creates a Renderer with the given options.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// String renders node to ADQL text using DefaultOptions.
func String(node ast.Node) string {
	r := New(DefaultOptions)
	r.Render(node)
	return r.String()
}

// String returns the text rendered so far.
func (r *Renderer) String() string { return r.buf.String() }

// Render writes node to the renderer's internal buffer.
func (r *Renderer) Render(node ast.Node) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.Query:
		r.renderQuery(n)
	case *ast.SelectQuery:
		r.renderSelect(n)
	case *ast.SetOperation:
		r.renderSetOperation(n)
	case *ast.ParenQueryExpr:
		r.write("(")
		r.Render(n.Inner)
		r.write(")")
	case *ast.SelectAllColumns:
		if n.Qualifier != "" {
			r.writeIdent(n.Qualifier)
			r.write(".")
		}
		r.write("*")
	case *ast.AliasedSelectItem:
		r.Render(n.Expr)
		if n.Alias != "" {
			r.write(" ")
			r.writeKeyword("AS")
			r.write(" ")
			r.writeIdent(n.Alias)
		}
	case *ast.TableRef:
		r.renderTableRef(n)
	case *ast.JoinedTable:
		r.renderJoinedTable(n)
	case *ast.SubQueryRef:
		r.write("(")
		r.Render(n.Query)
		r.write(")")
		if n.Alias != "" {
			r.write(" ")
			r.writeKeyword("AS")
			r.write(" ")
			r.writeIdent(n.Alias)
		}
	case *ast.ParenTableExpr:
		r.write("(")
		r.Render(n.Inner)
		r.write(")")
	case *ast.ColumnReference:
		r.renderDottedParts(n.Parts)
	case *ast.NumericLiteral:
		r.write(n.Text)
	case *ast.StringLiteral:
		r.renderStringLiteral(n.Value)
	case *ast.BooleanLiteral:
		if n.Value {
			r.writeKeyword("TRUE")
		} else {
			r.writeKeyword("FALSE")
		}
	case *ast.NullLiteral:
		r.writeKeyword("NULL")
	case *ast.ParamRef:
		if n.Name == "" {
			r.write("?")
		} else {
			r.write(":" + n.Name)
		}
	case *ast.UnaryExpr:
		r.renderUnaryExpr(n)
	case *ast.BinaryExpr:
		r.Render(n.Left)
		r.write(" ")
		r.writeKeyword(opText(n.Op))
		r.write(" ")
		r.Render(n.Right)
	case *ast.ParenExpr:
		r.write("(")
		r.Render(n.X)
		r.write(")")
	case *ast.FunctionCall:
		r.renderFunctionCall(n)
	case *ast.GeometryFunction:
		r.renderGeometryFunction(n)
	case *ast.CaseExpr:
		r.renderCaseExpr(n)
	case *ast.CastExpr:
		r.writeKeyword("CAST")
		r.write("(")
		r.Render(n.X)
		r.write(" ")
		r.writeKeyword("AS")
		r.write(" ")
		r.writeKeyword(n.Type)
		r.write(")")
	case *ast.BetweenExpr:
		r.Render(n.X)
		if n.Not {
			r.write(" ")
			r.writeKeyword("NOT")
		}
		r.write(" ")
		r.writeKeyword("BETWEEN")
		r.write(" ")
		r.Render(n.Low)
		r.write(" ")
		r.writeKeyword("AND")
		r.write(" ")
		r.Render(n.High)
	case *ast.InExpr:
		r.renderInExpr(n)
	case *ast.LikeExpr:
		r.renderLikeExpr(n)
	case *ast.IsNullExpr:
		r.Render(n.X)
		r.write(" ")
		r.writeKeyword("IS")
		if n.Not {
			r.write(" ")
			r.writeKeyword("NOT")
		}
		r.write(" ")
		r.writeKeyword("NULL")
	case *ast.ExistsExpr:
		r.writeKeyword("EXISTS")
		r.write(" (")
		r.Render(n.Subquery)
		r.write(")")
	case *ast.SubqueryExpr:
		r.write("(")
		r.Render(n.Query)
		r.write(")")
	}
}

func (r *Renderer) write(s string) { r.buf.WriteString(s) }

func (r *Renderer) writeKeyword(kw string) {
	if r.opts.Uppercase {
		r.buf.WriteString(strings.ToUpper(kw))
	} else {
		r.buf.WriteString(strings.ToLower(kw))
	}
}

func (r *Renderer) writeIdent(id string) {
	if needsQuoting(id) {
		r.buf.WriteByte('"')
		r.buf.WriteString(strings.ReplaceAll(id, `"`, `""`))
		r.buf.WriteByte('"')
	} else {
		r.buf.WriteString(id)
	}
}

func (r *Renderer) renderDottedParts(parts []string) {
	for i, p := range parts {
		if i > 0 {
			r.write(".")
		}
		r.writeIdent(p)
	}
}

func (r *Renderer) renderQuery(q *ast.Query) {
	r.Render(q.Body)
	if len(q.OrderBy) > 0 {
		r.write(" ")
		r.writeKeyword("ORDER BY")
		r.write(" ")
		for i, ob := range q.OrderBy {
			if i > 0 {
				r.write(", ")
			}
			if ob.Expr != nil {
				r.Render(ob.Expr)
			} else {
				r.write(itoa(ob.Ordinal))
			}
			if ob.Desc {
				r.write(" ")
				r.writeKeyword("DESC")
			}
		}
	}
	if q.Offset != nil {
		r.write(" ")
		r.writeKeyword("OFFSET")
		r.write(" ")
		r.write(itoa(q.Offset.Count))
	}
}

func (r *Renderer) renderSelect(s *ast.SelectQuery) {
	r.writeKeyword("SELECT")
	if s.Distinct {
		r.write(" ")
		r.writeKeyword("DISTINCT")
	}
	if s.Top != nil {
		r.write(" ")
		r.writeKeyword("TOP")
		r.write(" ")
		r.write(itoa(*s.Top))
	}
	r.write(" ")
	for i, item := range s.SelectList {
		if i > 0 {
			r.write(", ")
		}
		r.Render(item)
	}
	if s.From != nil {
		r.write(" ")
		r.writeKeyword("FROM")
		r.write(" ")
		r.Render(s.From)
	}
	if s.Where != nil {
		r.write(" ")
		r.writeKeyword("WHERE")
		r.write(" ")
		r.Render(s.Where)
	}
	if len(s.GroupBy) > 0 {
		r.write(" ")
		r.writeKeyword("GROUP BY")
		r.write(" ")
		for i, g := range s.GroupBy {
			if i > 0 {
				r.write(", ")
			}
			r.Render(g)
		}
	}
	if s.Having != nil {
		r.write(" ")
		r.writeKeyword("HAVING")
		r.write(" ")
		r.Render(s.Having)
	}
}

func (r *Renderer) renderSetOperation(s *ast.SetOperation) {
	r.Render(s.Left)
	r.write(" ")
	r.writeKeyword(s.Op.String())
	if s.All {
		r.write(" ")
		r.writeKeyword("ALL")
	}
	r.write(" ")
	r.Render(s.Right)
}

func (r *Renderer) renderTableRef(t *ast.TableRef) {
	r.renderDottedParts(t.Parts)
	if t.Alias != "" {
		r.write(" ")
		r.writeKeyword("AS")
		r.write(" ")
		r.writeIdent(t.Alias)
	}
}

func (r *Renderer) renderJoinedTable(j *ast.JoinedTable) {
	r.Render(j.Left)
	r.write(" ")
	if j.Natural {
		r.writeKeyword("NATURAL")
		r.write(" ")
	}
	r.writeKeyword(j.Join.String())
	r.write(" ")
	r.Render(j.Right)
	if j.On != nil {
		r.write(" ")
		r.writeKeyword("ON")
		r.write(" ")
		r.Render(j.On)
	}
	if len(j.Using) > 0 {
		r.write(" ")
		r.writeKeyword("USING")
		r.write(" (")
		for i, col := range j.Using {
			if i > 0 {
				r.write(", ")
			}
			r.writeIdent(col)
		}
		r.write(")")
	}
}

func (r *Renderer) renderUnaryExpr(u *ast.UnaryExpr) {
	switch u.Op {
	case token.NOT:
		r.writeKeyword("NOT")
		r.write(" ")
	case token.MINUS:
		r.write("-")
	case token.PLUS:
		r.write("+")
	}
	r.Render(u.X)
}

func (r *Renderer) renderFunctionCall(f *ast.FunctionCall) {
	r.writeKeyword(f.Name)
	r.write("(")
	if f.Distinct {
		r.writeKeyword("DISTINCT")
		r.write(" ")
	}
	for i, a := range f.Args {
		if i > 0 {
			r.write(", ")
		}
		r.Render(a)
	}
	r.write(")")
}

func (r *Renderer) renderGeometryFunction(g *ast.GeometryFunction) {
	r.writeKeyword(string(g.Name))
	r.write("(")
	for i, a := range g.Args {
		if i > 0 {
			r.write(", ")
		}
		r.Render(a)
	}
	r.write(")")
}

func (r *Renderer) renderCaseExpr(c *ast.CaseExpr) {
	r.writeKeyword("CASE")
	if c.Operand != nil {
		r.write(" ")
		r.Render(c.Operand)
	}
	for _, w := range c.Whens {
		r.write(" ")
		r.writeKeyword("WHEN")
		r.write(" ")
		r.Render(w.Cond)
		r.write(" ")
		r.writeKeyword("THEN")
		r.write(" ")
		r.Render(w.Result)
	}
	if c.Else != nil {
		r.write(" ")
		r.writeKeyword("ELSE")
		r.write(" ")
		r.Render(c.Else)
	}
	r.write(" ")
	r.writeKeyword("END")
}

func (r *Renderer) renderInExpr(e *ast.InExpr) {
	r.Render(e.X)
	if e.Not {
		r.write(" ")
		r.writeKeyword("NOT")
	}
	r.write(" ")
	r.writeKeyword("IN")
	r.write(" (")
	if e.Subquery != nil {
		r.Render(e.Subquery)
	} else {
		for i, v := range e.List {
			if i > 0 {
				r.write(", ")
			}
			r.Render(v)
		}
	}
	r.write(")")
}

func (r *Renderer) renderLikeExpr(e *ast.LikeExpr) {
	r.Render(e.X)
	if e.Not {
		r.write(" ")
		r.writeKeyword("NOT")
	}
	r.write(" ")
	r.writeKeyword("LIKE")
	r.write(" ")
	r.Render(e.Pattern)
	if e.Escape != nil {
		r.write(" ")
		r.writeKeyword("ESCAPE")
		r.write(" ")
		r.Render(e.Escape)
	}
}

func (r *Renderer) renderStringLiteral(s string) {
	r.write("'")
	r.write(strings.ReplaceAll(s, "'", "''"))
	r.write("'")
}

func needsQuoting(id string) bool {
	if len(id) == 0 {
		return true
	}
	ch := id[0]
	if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_') {
		return true
	}
	for i := 1; i < len(id); i++ {
		ch := id[i]
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch == '_') {
			return true
		}
	}
	return token.LookupIdent(id) != token.IDENT
}

func opText(t token.Token) string {
	switch t {
	case token.EQ:
		return "="
	case token.NEQ:
		return "<>"
	case token.LT:
		return "<"
	case token.GT:
		return ">"
	case token.LTE:
		return "<="
	case token.GTE:
		return ">="
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.ASTERISK:
		return "*"
	case token.SLASH:
		return "/"
	case token.AND:
		return "AND"
	case token.OR:
		return "OR"
	case token.CONCAT:
		return "||"
	default:
		return t.String()
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
