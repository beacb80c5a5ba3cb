package ast

import (
	"reflect"
	"sync"
)

// Pooled node allocation: the parser borrows nodes from these pools while
// building a tree and the caller returns the whole tree via ReleaseAST
// once it is done with it (e.g. after translation). This is pure memory
// reuse; it is unrelated to DeepCopy in copy.go, which produces an
// independent tree.

var (
	columnReferencePool = sync.Pool{New: func() any { return &ColumnReference{} }}
	tableRefPool        = sync.Pool{New: func() any { return &TableRef{} }}
	binaryExprPool      = sync.Pool{New: func() any { return &BinaryExpr{} }}
	functionCallPool    = sync.Pool{New: func() any { return &FunctionCall{} }}
	aliasedItemPool     = sync.Pool{New: func() any { return &AliasedSelectItem{} }}
	selectQueryPool     = sync.Pool{New: func() any { return &SelectQuery{} }}

	exprSlicePool       = sync.Pool{New: func() any { s := make([]Expr, 0, 4); return &s }}
	selectItemSlicePool = sync.Pool{New: func() any { s := make([]SelectItem, 0, 4); return &s }}
)

func GetColumnReference() *ColumnReference {
	n := columnReferencePool.Get().(*ColumnReference)
	*n = ColumnReference{}
	return n
}
func PutColumnReference(n *ColumnReference) { columnReferencePool.Put(n) }

func GetTableRef() *TableRef {
	n := tableRefPool.Get().(*TableRef)
	*n = TableRef{}
	return n
}
func PutTableRef(n *TableRef) { tableRefPool.Put(n) }

func GetBinaryExpr() *BinaryExpr {
	n := binaryExprPool.Get().(*BinaryExpr)
	*n = BinaryExpr{}
	return n
}
func PutBinaryExpr(n *BinaryExpr) { binaryExprPool.Put(n) }

func GetFunctionCall() *FunctionCall {
	n := functionCallPool.Get().(*FunctionCall)
	*n = FunctionCall{}
	return n
}
func PutFunctionCall(n *FunctionCall) { functionCallPool.Put(n) }

func GetAliasedSelectItem() *AliasedSelectItem {
	n := aliasedItemPool.Get().(*AliasedSelectItem)
	*n = AliasedSelectItem{}
	return n
}
func PutAliasedSelectItem(n *AliasedSelectItem) { aliasedItemPool.Put(n) }

func GetSelectQuery() *SelectQuery {
	n := selectQueryPool.Get().(*SelectQuery)
	*n = SelectQuery{}
	return n
}
func PutSelectQuery(n *SelectQuery) { selectQueryPool.Put(n) }

func GetExprSlice() []Expr {
	p := exprSlicePool.Get().(*[]Expr)
	return (*p)[:0]
}
func PutExprSlice(s []Expr) {
	s = s[:0]
	exprSlicePool.Put(&s)
}

func GetSelectItemSlice() []SelectItem {
	p := selectItemSlicePool.Get().(*[]SelectItem)
	return (*p)[:0]
}
func PutSelectItemSlice(s []SelectItem) {
	s = s[:0]
	selectItemSlicePool.Put(&s)
}

// isNil reports whether a Node interface value wraps a nil pointer, a
// defensive check needed before recursing into optional children.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// ReleaseAST returns node and every node reachable from it to their
// respective pools. Callers must not use node, or anything derived from it,
// afterwards.
func ReleaseAST(node Node) {
	if isNil(node) {
		return
	}
	switch n := node.(type) {
	case *Query:
		ReleaseAST(n.Body)
		for _, o := range n.OrderBy {
			ReleaseAST(o.Expr)
		}
	case *SelectQuery:
		for _, item := range n.SelectList {
			ReleaseAST(item)
		}
		ReleaseAST(n.From)
		ReleaseAST(n.Where)
		for _, g := range n.GroupBy {
			ReleaseAST(g)
		}
		ReleaseAST(n.Having)
		PutSelectQuery(n)
	case *SetOperation:
		ReleaseAST(n.Left)
		ReleaseAST(n.Right)
	case *AliasedSelectItem:
		ReleaseAST(n.Expr)
		PutAliasedSelectItem(n)
	case *TableRef:
		PutTableRef(n)
	case *JoinedTable:
		ReleaseAST(n.Left)
		ReleaseAST(n.Right)
		ReleaseAST(n.On)
	case *SubQueryRef:
		ReleaseAST(n.Query)
	case *ParenTableExpr:
		ReleaseAST(n.Inner)
	case *ColumnReference:
		PutColumnReference(n)
	case *BinaryExpr:
		ReleaseAST(n.Left)
		ReleaseAST(n.Right)
		PutBinaryExpr(n)
	case *UnaryExpr:
		ReleaseAST(n.X)
	case *ParenExpr:
		ReleaseAST(n.X)
	case *FunctionCall:
		for _, a := range n.Args {
			ReleaseAST(a)
		}
		PutFunctionCall(n)
	case *GeometryFunction:
		for _, a := range n.Args {
			ReleaseAST(a)
		}
	case *CaseExpr:
		ReleaseAST(n.Operand)
		for _, w := range n.Whens {
			ReleaseAST(w.Cond)
			ReleaseAST(w.Result)
		}
		ReleaseAST(n.Else)
	case *CastExpr:
		ReleaseAST(n.X)
	case *BetweenExpr:
		ReleaseAST(n.X)
		ReleaseAST(n.Low)
		ReleaseAST(n.High)
	case *InExpr:
		ReleaseAST(n.X)
		for _, e := range n.List {
			ReleaseAST(e)
		}
		ReleaseAST(n.Subquery)
	case *LikeExpr:
		ReleaseAST(n.X)
		ReleaseAST(n.Pattern)
		ReleaseAST(n.Escape)
	case *IsNullExpr:
		ReleaseAST(n.X)
	case *ExistsExpr:
		ReleaseAST(n.Subquery)
	case *SubqueryExpr:
		ReleaseAST(n.Query)
	}
}
