// Package checker resolves a parsed ADQL query against a catalog.Catalog:
// binding table/column references, inferring each select-list item's result
// type, and enforcing the function/geometry allow-list and ORDER BY ordinal
// rules that the parser itself cannot check without schema knowledge.
package checker

import (
	"fmt"
	"strings"

	"adqltap/ast"
	"adqltap/catalog"
	"adqltap/errs"
	"adqltap/token"
)

// resultColumn is one column of a query's inferred result set.
type resultColumn struct {
	name   string
	typ    catalog.ColumnType
	source *catalog.Column // nil for computed expressions
}

// CheckedQuery is the output of Check: the original AST plus its inferred
// result-set shape, ready for the translator. FuncRefs carries the
// FunctionDef resolved for each *ast.FunctionCall in the tree, so the
// translator can honor a user-defined function's ImplRef (§4.5's UDF
// contract) without re-resolving the function registry itself.
type CheckedQuery struct {
	Query    *ast.Query
	Columns  []resultColumn
	FuncRefs map[*ast.FunctionCall]*FunctionDef
}

// ResultColumnNames exposes the inferred result-set column names, in order.
func (c *CheckedQuery) ResultColumnNames() []string {
	names := make([]string, len(c.Columns))
	for i, rc := range c.Columns {
		names[i] = rc.name
	}
	return names
}

// Checker binds a query against one catalog, an allow-list of callable
// functions, and an allow-list of geometry predicates/functions. A Checker
// is safe to reuse across queries; it holds no per-query mutable state of
// its own.
type Checker struct {
	Catalog    *catalog.Catalog
	Functions  *FunctionRegistry
	Geometries map[ast.GeometryName]bool
}

// New creates a Checker backed by cat, with the default geometry-and-math
// function registry and every standard geometry name allowed.
func New(cat *catalog.Catalog) *Checker {
	return &Checker{Catalog: cat, Functions: DefaultFunctions(), Geometries: DefaultGeometries()}
}

// DefaultGeometries returns the full ADQL geometry vocabulary as an
// allow-list; callers that need to restrict a service to a subset (per
// §4.4's "geometries ⊆ {...}" feature allow-list) build their own map and
// assign it to Checker.Geometries instead of calling New.
func DefaultGeometries() map[ast.GeometryName]bool {
	return map[ast.GeometryName]bool{
		ast.GeomPoint:     true,
		ast.GeomCircle:    true,
		ast.GeomBox:       true,
		ast.GeomPolygon:   true,
		ast.GeomRegion:    true,
		ast.GeomCentroid:  true,
		ast.GeomDistance:  true,
		ast.GeomArea:      true,
		ast.GeomCoord1:    true,
		ast.GeomCoord2:    true,
		ast.GeomCoordsys:  true,
		ast.GeomContains:  true,
		ast.GeomIntersect: true,
	}
}

// Check resolves every identifier in q, infers its result-set shape, and
// enforces ORDER BY ordinal bounds. It returns every error found, not just
// the first, so a caller can report a complete diagnostic list.
func (c *Checker) Check(q *ast.Query) (*CheckedQuery, []error) {
	ck := &checkCtx{checker: c, funcRefs: make(map[*ast.FunctionCall]*FunctionDef)}
	cols := ck.checkQueryExpr(q.Body)
	ck.checkOuterOrderBy(q, cols)
	if len(ck.errs) > 0 {
		return nil, ck.errs
	}
	return &CheckedQuery{Query: q, Columns: cols, FuncRefs: ck.funcRefs}, nil
}

// checkCtx accumulates errors across one Check call so every sub-check runs
// instead of stopping at the first failure.
type checkCtx struct {
	checker  *Checker
	errs     []error
	funcRefs map[*ast.FunctionCall]*FunctionDef
}

func (ck *checkCtx) fail(err error) {
	if err != nil {
		ck.errs = append(ck.errs, err)
	}
}

func (ck *checkCtx) checkQueryExpr(qe ast.QueryExpr) []resultColumn {
	switch q := qe.(type) {
	case *ast.SelectQuery:
		return ck.checkSelect(q, nil)
	case *ast.SetOperation:
		left := ck.checkQueryExpr(q.Left)
		right := ck.checkQueryExpr(q.Right)
		if len(left) != 0 && len(right) != 0 && len(left) != len(right) {
			ck.fail(errs.New(errs.TypeMismatch,
				"%s operands have different column counts (%d vs %d)", q.Op, len(left), len(right)))
		}
		return left
	case *ast.ParenQueryExpr:
		return ck.checkQueryExpr(q.Inner)
	}
	return nil
}

func (ck *checkCtx) checkSelect(s *ast.SelectQuery, parent *scope) []resultColumn {
	sc, err := buildScope(ck.checker.Catalog, s.From, parent)
	if err != nil {
		ck.fail(err)
		sc = newScope(parent)
	}

	var cols []resultColumn
	for _, item := range s.SelectList {
		switch it := item.(type) {
		case *ast.SelectAllColumns:
			cols = append(cols, sc.visibleColumns(it.Qualifier)...)
		case *ast.AliasedSelectItem:
			typ := ck.checkExpr(it.Expr, sc)
			name := it.Alias
			if name == "" {
				name = defaultColumnName(it.Expr)
			}
			cols = append(cols, resultColumn{name: name, typ: typ})
		}
	}

	if s.Where != nil {
		ck.checkExpr(s.Where, sc)
	}
	for _, g := range s.GroupBy {
		ck.checkExpr(g, sc)
	}
	if s.Having != nil {
		ck.checkExpr(s.Having, sc)
	}
	return cols
}

// checkExpr resolves identifiers and function calls within e, returning its
// inferred type (TypeUnknown when it cannot be determined statically).
func (ck *checkCtx) checkExpr(e ast.Expr, sc *scope) catalog.ColumnType {
	switch x := e.(type) {
	case *ast.ColumnReference:
		col, _, err := sc.resolveColumn(x)
		if err != nil {
			ck.fail(err)
			return catalog.TypeUnknown
		}
		return col.Type
	case *ast.NumericLiteral:
		if x.Float {
			return catalog.TypeDouble
		}
		return catalog.TypeInteger
	case *ast.StringLiteral:
		return catalog.TypeVarchar
	case *ast.BooleanLiteral:
		return catalog.TypeBoolean
	case *ast.NullLiteral:
		return catalog.TypeUnknown
	case *ast.ParamRef:
		return catalog.TypeUnknown
	case *ast.UnaryExpr:
		return ck.checkExpr(x.X, sc)
	case *ast.BinaryExpr:
		left := ck.checkExpr(x.Left, sc)
		right := ck.checkExpr(x.Right, sc)
		if isComparisonOp(x.Op) {
			return catalog.TypeBoolean
		}
		if x.Op == token.CONCAT {
			return catalog.TypeVarchar
		}
		return arithmeticResultType(left, right)
	case *ast.ParenExpr:
		return ck.checkExpr(x.X, sc)
	case *ast.FunctionCall:
		for _, a := range x.Args {
			ck.checkExpr(a, sc)
		}
		def, err := ck.checker.Functions.Lookup(x.Name, len(x.Args))
		if err != nil {
			ck.fail(err)
			return catalog.TypeUnknown
		}
		ck.funcRefs[x] = def
		return def.ReturnType
	case *ast.GeometryFunction:
		for _, a := range x.Args {
			ck.checkExpr(a, sc)
		}
		if !ck.checker.Geometries[x.Name] {
			ck.fail(errs.New(errs.FeatureForbidden, "geometry function %s is not enabled for this service", x.Name))
			return catalog.TypeUnknown
		}
		return geometryReturnType(x.Name)
	case *ast.CaseExpr:
		if x.Operand != nil {
			ck.checkExpr(x.Operand, sc)
		}
		var typ catalog.ColumnType
		for _, w := range x.Whens {
			ck.checkExpr(w.Cond, sc)
			typ = ck.checkExpr(w.Result, sc)
		}
		if x.Else != nil {
			typ = ck.checkExpr(x.Else, sc)
		}
		return typ
	case *ast.CastExpr:
		ck.checkExpr(x.X, sc)
		return castTargetType(x.Type)
	case *ast.BetweenExpr:
		ck.checkExpr(x.X, sc)
		ck.checkExpr(x.Low, sc)
		ck.checkExpr(x.High, sc)
		return catalog.TypeBoolean
	case *ast.InExpr:
		ck.checkExpr(x.X, sc)
		for _, item := range x.List {
			ck.checkExpr(item, sc)
		}
		if x.Subquery != nil {
			ck.checkSubquery(x.Subquery, sc)
		}
		return catalog.TypeBoolean
	case *ast.LikeExpr:
		ck.checkExpr(x.X, sc)
		ck.checkExpr(x.Pattern, sc)
		if x.Escape != nil {
			ck.checkExpr(x.Escape, sc)
		}
		return catalog.TypeBoolean
	case *ast.IsNullExpr:
		ck.checkExpr(x.X, sc)
		return catalog.TypeBoolean
	case *ast.ExistsExpr:
		ck.checkSubquery(x.Subquery, sc)
		return catalog.TypeBoolean
	case *ast.SubqueryExpr:
		cols := ck.checkSubquery(x.Query, sc)
		if len(cols) == 1 {
			return cols[0].typ
		}
		return catalog.TypeUnknown
	}
	return catalog.TypeUnknown
}

func (ck *checkCtx) checkSubquery(q *ast.Query, outer *scope) []resultColumn {
	switch body := q.Body.(type) {
	case *ast.SelectQuery:
		return ck.checkSelect(body, outer)
	default:
		return ck.checkQueryExpr(q.Body)
	}
}

// checkOuterOrderBy validates ORDER BY ordinals against the inferred
// result-set width; out-of-range ordinals raise AmbiguousOrderPosition
// rather than a generic syntax error, since the position is syntactically
// well-formed but semantically unresolvable.
func (ck *checkCtx) checkOuterOrderBy(q *ast.Query, cols []resultColumn) {
	for _, item := range q.OrderBy {
		if item.Ordinal <= 0 {
			continue
		}
		if item.Ordinal > len(cols) {
			ck.fail(errs.New(errs.AmbiguousOrderPosition,
				"ORDER BY position %d is out of range for a %d-column result", item.Ordinal, len(cols)))
		}
	}
}

func isComparisonOp(op token.Token) bool {
	switch op {
	case token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE, token.AND, token.OR, token.NOT:
		return true
	}
	return false
}

func isNumericType(t catalog.ColumnType) bool {
	switch t {
	case catalog.TypeSmallInt, catalog.TypeInteger, catalog.TypeBigInt,
		catalog.TypeReal, catalog.TypeDouble, catalog.TypeUnknownNumeric:
		return true
	}
	return false
}

// arithmeticResultType infers the result of a non-comparison,
// non-concatenation binary operator: same-typed numeric operands keep
// their shared type, anything else (mixed numeric types, or an operand
// whose type couldn't be inferred) widens to UNKNOWN_NUMERIC rather than
// guessing a specific width.
func arithmeticResultType(left, right catalog.ColumnType) catalog.ColumnType {
	if left == right && isNumericType(left) {
		return left
	}
	return catalog.TypeUnknownNumeric
}

func defaultColumnName(e ast.Expr) string {
	if cr, ok := e.(*ast.ColumnReference); ok {
		return cr.Name()
	}
	if fc, ok := e.(*ast.FunctionCall); ok {
		return strings.ToLower(fc.Name)
	}
	return ""
}

func geometryReturnType(name ast.GeometryName) catalog.ColumnType {
	switch name {
	case ast.GeomPoint:
		return catalog.TypePoint
	case ast.GeomCircle:
		return catalog.TypeCircle
	case ast.GeomBox, ast.GeomPolygon, ast.GeomRegion, ast.GeomCentroid:
		return catalog.TypeRegion
	case ast.GeomContains, ast.GeomIntersect:
		return catalog.TypeInteger
	case ast.GeomDistance, ast.GeomArea, ast.GeomCoord1, ast.GeomCoord2:
		return catalog.TypeDouble
	case ast.GeomCoordsys:
		return catalog.TypeVarchar
	}
	return catalog.TypeUnknown
}

func castTargetType(sqlType string) catalog.ColumnType {
	t := strings.ToUpper(sqlType)
	switch {
	case strings.HasPrefix(t, "SMALLINT"):
		return catalog.TypeSmallInt
	case strings.HasPrefix(t, "INTEGER"), strings.HasPrefix(t, "INT"):
		return catalog.TypeInteger
	case strings.HasPrefix(t, "BIGINT"):
		return catalog.TypeBigInt
	case strings.HasPrefix(t, "REAL"):
		return catalog.TypeReal
	case strings.HasPrefix(t, "DOUBLE"):
		return catalog.TypeDouble
	case strings.HasPrefix(t, "CHAR"):
		return catalog.TypeChar
	case strings.HasPrefix(t, "VARCHAR"):
		return catalog.TypeVarchar
	case strings.HasPrefix(t, "BOOLEAN"):
		return catalog.TypeBoolean
	case strings.HasPrefix(t, "TIMESTAMP"):
		return catalog.TypeTimestamp
	case strings.HasPrefix(t, "POINT"):
		return catalog.TypePoint
	case strings.HasPrefix(t, "CIRCLE"):
		return catalog.TypeCircle
	case strings.HasPrefix(t, "REGION"):
		return catalog.TypeRegion
	}
	return catalog.TypeUnknown
}

// inferSubqueryColumns checks a FROM-clause subquery to learn its
// result-set shape; if checking it reports errors, the first one is
// returned, wrapped, and no columns are returned.
func inferSubqueryColumns(cat *catalog.Catalog, q *ast.Query) ([]*catalog.Column, error) {
	c := &Checker{Catalog: cat, Functions: DefaultFunctions(), Geometries: DefaultGeometries()}
	checked, errList := c.Check(q)
	if len(errList) > 0 {
		return nil, fmt.Errorf("resolving subquery columns: %w", errList[0])
	}
	cols := make([]*catalog.Column, len(checked.Columns))
	for i, rc := range checked.Columns {
		cols[i] = &catalog.Column{Name: rc.name, Type: rc.typ, Principal: true}
	}
	return cols, nil
}
