package parser

import (
	"testing"

	"adqltap/ast"
)

func mustParse(t *testing.T, src string) *ast.Query {
	t.Helper()
	q, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return q
}

func TestParseSimpleSelect(t *testing.T) {
	q := mustParse(t, "SELECT ra, dec FROM ivoa.ObsCore WHERE ra > 10")
	sel := q.Body.(*ast.SelectQuery)
	if len(sel.SelectList) != 2 {
		t.Fatalf("expected 2 select items, got %d", len(sel.SelectList))
	}
	from := sel.From.(*ast.TableRef)
	if from.Name() != "ObsCore" || from.Schema() != "ivoa" {
		t.Fatalf("unexpected table ref: %+v", from)
	}
	where := sel.Where.(*ast.BinaryExpr)
	col := where.Left.(*ast.ColumnReference)
	if col.Name() != "ra" {
		t.Fatalf("expected ra column, got %q", col.Name())
	}
}

func TestParseTopAndDistinct(t *testing.T) {
	q := mustParse(t, "SELECT DISTINCT TOP 10 ra FROM ObsCore")
	sel := q.Body.(*ast.SelectQuery)
	if !sel.Distinct {
		t.Fatalf("expected DISTINCT")
	}
	if sel.Top == nil || *sel.Top != 10 {
		t.Fatalf("expected TOP 10, got %v", sel.Top)
	}
}

func TestParseStarSelect(t *testing.T) {
	q := mustParse(t, "SELECT * FROM ObsCore")
	sel := q.Body.(*ast.SelectQuery)
	if _, ok := sel.SelectList[0].(*ast.SelectAllColumns); !ok {
		t.Fatalf("expected SelectAllColumns, got %T", sel.SelectList[0])
	}
}

func TestParseQualifiedStarSelect(t *testing.T) {
	q := mustParse(t, "SELECT o.* FROM ObsCore AS o")
	sel := q.Body.(*ast.SelectQuery)
	sa := sel.SelectList[0].(*ast.SelectAllColumns)
	if sa.Qualifier != "o" {
		t.Fatalf("expected qualifier o, got %q", sa.Qualifier)
	}
}

func TestParseGeometryPredicate(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM ObsCore WHERE CONTAINS(POINT('ICRS', ra, dec), CIRCLE('ICRS', 10, 20, 1)) = 1")
	sel := q.Body.(*ast.SelectQuery)
	cmp := sel.Where.(*ast.BinaryExpr)
	contains := cmp.Left.(*ast.GeometryFunction)
	if contains.Name != ast.GeomContains {
		t.Fatalf("expected CONTAINS, got %s", contains.Name)
	}
	point := contains.Args[0].(*ast.GeometryFunction)
	if point.Name != ast.GeomPoint || len(point.Args) != 2 {
		t.Fatalf("unexpected point args: %+v", point)
	}
	circle := contains.Args[1].(*ast.GeometryFunction)
	if circle.Name != ast.GeomCircle || len(circle.Args) != 3 {
		t.Fatalf("unexpected circle args: %+v", circle)
	}
}

func TestGeometryFunctionWrongArity(t *testing.T) {
	_, errs := Parse("SELECT 1 FROM t WHERE CONTAINS(POINT('ICRS', ra)) = 1")
	if len(errs) == 0 {
		t.Fatalf("expected an arity error for POINT with 1 argument")
	}
}

func TestParseJoin(t *testing.T) {
	q := mustParse(t, "SELECT a.ra FROM Table1 AS a JOIN Table2 AS b ON a.id = b.id")
	sel := q.Body.(*ast.SelectQuery)
	join := sel.From.(*ast.JoinedTable)
	if join.Join != ast.InnerJoin {
		t.Fatalf("expected InnerJoin, got %v", join.Join)
	}
	if join.On == nil {
		t.Fatalf("expected an ON clause")
	}
}

func TestParseLeftJoinUsing(t *testing.T) {
	q := mustParse(t, "SELECT a.ra FROM Table1 a LEFT JOIN Table2 b USING (id)")
	sel := q.Body.(*ast.SelectQuery)
	join := sel.From.(*ast.JoinedTable)
	if join.Join != ast.LeftJoin {
		t.Fatalf("expected LeftJoin, got %v", join.Join)
	}
	if len(join.Using) != 1 || join.Using[0] != "id" {
		t.Fatalf("unexpected USING list: %v", join.Using)
	}
}

func TestParseSetOperation(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM A UNION ALL SELECT ra FROM B")
	setOp, ok := q.Body.(*ast.SetOperation)
	if !ok {
		t.Fatalf("expected SetOperation, got %T", q.Body)
	}
	if setOp.Op != ast.Union || !setOp.All {
		t.Fatalf("expected UNION ALL, got %v all=%v", setOp.Op, setOp.All)
	}
	if _, ok := setOp.Left.(*ast.SelectQuery); !ok {
		t.Fatalf("expected left operand SelectQuery, got %T", setOp.Left)
	}
}

func TestParseThreeWaySetOperationLeftAssociative(t *testing.T) {
	q := mustParse(t, "SELECT a FROM X UNION SELECT a FROM Y EXCEPT SELECT a FROM Z")
	outer, ok := q.Body.(*ast.SetOperation)
	if !ok {
		t.Fatalf("expected outer SetOperation, got %T", q.Body)
	}
	if outer.Op != ast.Except {
		t.Fatalf("expected outer EXCEPT, got %v", outer.Op)
	}
	inner, ok := outer.Left.(*ast.SetOperation)
	if !ok {
		t.Fatalf("expected left-associative nesting, got %T", outer.Left)
	}
	if inner.Op != ast.Union {
		t.Fatalf("expected inner UNION, got %v", inner.Op)
	}
}

func TestParseOrderByAndOffset(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM ObsCore ORDER BY 1 DESC OFFSET 5")
	if len(q.OrderBy) != 1 || q.OrderBy[0].Ordinal != 1 || !q.OrderBy[0].Desc {
		t.Fatalf("unexpected ORDER BY: %+v", q.OrderBy)
	}
	if q.Offset == nil || q.Offset.Count != 5 {
		t.Fatalf("expected OFFSET 5, got %v", q.Offset)
	}
}

func TestParseBetweenAndIn(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM ObsCore WHERE ra BETWEEN 1 AND 2 AND dec NOT IN (1, 2, 3)")
	sel := q.Body.(*ast.SelectQuery)
	and := sel.Where.(*ast.BinaryExpr)
	between := and.Left.(*ast.BetweenExpr)
	if between.Not {
		t.Fatalf("expected non-negated BETWEEN")
	}
	in := and.Right.(*ast.InExpr)
	if !in.Not || len(in.List) != 3 {
		t.Fatalf("unexpected IN expr: %+v", in)
	}
}

func TestParseInSubquery(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM ObsCore WHERE obs_id IN (SELECT obs_id FROM Selected)")
	sel := q.Body.(*ast.SelectQuery)
	in := sel.Where.(*ast.InExpr)
	if in.Subquery == nil {
		t.Fatalf("expected subquery form of IN")
	}
}

func TestParseLikeEscape(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM ObsCore WHERE name LIKE 'M!_%' ESCAPE '!'")
	sel := q.Body.(*ast.SelectQuery)
	like := sel.Where.(*ast.LikeExpr)
	if like.Escape == nil {
		t.Fatalf("expected ESCAPE clause")
	}
}

func TestParseIsNull(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM ObsCore WHERE dec IS NOT NULL")
	sel := q.Body.(*ast.SelectQuery)
	isNull := sel.Where.(*ast.IsNullExpr)
	if !isNull.Not {
		t.Fatalf("expected IS NOT NULL")
	}
}

func TestParseCaseAndCast(t *testing.T) {
	q := mustParse(t, "SELECT CASE WHEN ra > 0 THEN CAST(ra AS INTEGER) ELSE 0 END FROM ObsCore")
	sel := q.Body.(*ast.SelectQuery)
	item := sel.SelectList[0].(*ast.AliasedSelectItem)
	ce := item.Expr.(*ast.CaseExpr)
	if len(ce.Whens) != 1 {
		t.Fatalf("expected 1 WHEN clause, got %d", len(ce.Whens))
	}
	if _, ok := ce.Whens[0].Result.(*ast.CastExpr); !ok {
		t.Fatalf("expected CAST in THEN result, got %T", ce.Whens[0].Result)
	}
}

func TestParseExists(t *testing.T) {
	q := mustParse(t, "SELECT ra FROM ObsCore WHERE EXISTS (SELECT 1 FROM Other WHERE Other.id = ObsCore.id)")
	sel := q.Body.(*ast.SelectQuery)
	if _, ok := sel.Where.(*ast.ExistsExpr); !ok {
		t.Fatalf("expected ExistsExpr, got %T", sel.Where)
	}
}

func TestParseAggregateFunctionCall(t *testing.T) {
	q := mustParse(t, "SELECT COUNT(DISTINCT ra) FROM ObsCore")
	sel := q.Body.(*ast.SelectQuery)
	item := sel.SelectList[0].(*ast.AliasedSelectItem)
	fc := item.Expr.(*ast.FunctionCall)
	if fc.Name != "COUNT" || !fc.Distinct {
		t.Fatalf("unexpected function call: %+v", fc)
	}
}

func TestParseParenthesizedSetOperationWithTop(t *testing.T) {
	// TOP only ever attaches to a SelectQuery, so it is only reachable
	// through a parenthesized operand, never directly on a SetOperation.
	q := mustParse(t, "(SELECT TOP 5 ra FROM A) UNION (SELECT ra FROM B)")
	setOp := q.Body.(*ast.SetOperation)
	paren := setOp.Left.(*ast.ParenQueryExpr)
	inner := paren.Inner.(*ast.SelectQuery)
	if inner.Top == nil || *inner.Top != 5 {
		t.Fatalf("expected TOP 5 inside parenthesized operand, got %v", inner.Top)
	}
}

func TestParseErrorRecordsPosition(t *testing.T) {
	_, errs := Parse("SELECT FROM")
	if len(errs) == 0 {
		t.Fatalf("expected a parse error for missing select list")
	}
	if pe, ok := errs[0].(*ParseError); !ok || !pe.Pos.IsValid() {
		t.Fatalf("expected the first error to carry a source position, got %v", errs[0])
	}
}
