// Package visitor implements the ADQL AST traversal and replacement
// protocol: a depth-first Walk in the style of go/ast, a post-order Rewrite,
// and a stateful Cursor for in-place Replace/Remove during a walk.
package visitor

import "adqltap/ast"

// Visitor is called for every node Walk visits. If Visit returns a non-nil
// Visitor, Walk calls Walk(w, child) for each child of node; a nil return
// stops Walk from descending into node's children.
type Visitor interface {
	Visit(node ast.Node) Visitor
}

// Walk traverses the AST in depth-first order starting at node, calling
// v.Visit(node) before visiting node's children.
func Walk(v Visitor, node ast.Node) {
	if node == nil {
		return
	}
	v = v.Visit(node)
	if v == nil {
		return
	}
	walkChildren(v, node)
}

func walkChildren(v Visitor, node ast.Node) {
	switch n := node.(type) {
	case *ast.Query:
		Walk(v, n.Body)
		for _, o := range n.OrderBy {
			Walk(v, o)
		}
	case *ast.OrderByItem:
		if n.Expr != nil {
			Walk(v, n.Expr)
		}
	case *ast.SelectQuery:
		for _, item := range n.SelectList {
			Walk(v, item)
		}
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		for _, g := range n.GroupBy {
			Walk(v, g)
		}
		if n.Having != nil {
			Walk(v, n.Having)
		}
	case *ast.SetOperation:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *ast.ParenQueryExpr:
		Walk(v, n.Inner)
	case *ast.AliasedSelectItem:
		Walk(v, n.Expr)
	case *ast.SelectAllColumns:
		// leaf
	case *ast.TableRef:
		// leaf
	case *ast.JoinedTable:
		Walk(v, n.Left)
		Walk(v, n.Right)
		if n.On != nil {
			Walk(v, n.On)
		}
	case *ast.SubQueryRef:
		Walk(v, n.Query)
	case *ast.ParenTableExpr:
		Walk(v, n.Inner)
	case *ast.ColumnReference, *ast.NumericLiteral, *ast.StringLiteral,
		*ast.BooleanLiteral, *ast.NullLiteral, *ast.ParamRef:
		// leaves
	case *ast.UnaryExpr:
		Walk(v, n.X)
	case *ast.BinaryExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *ast.ParenExpr:
		Walk(v, n.X)
	case *ast.FunctionCall:
		for _, a := range n.Args {
			Walk(v, a)
		}
	case *ast.GeometryFunction:
		for _, a := range n.Args {
			Walk(v, a)
		}
	case *ast.CaseExpr:
		if n.Operand != nil {
			Walk(v, n.Operand)
		}
		for _, w := range n.Whens {
			Walk(v, w)
		}
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *ast.WhenClause:
		Walk(v, n.Cond)
		Walk(v, n.Result)
	case *ast.CastExpr:
		Walk(v, n.X)
	case *ast.BetweenExpr:
		Walk(v, n.X)
		Walk(v, n.Low)
		Walk(v, n.High)
	case *ast.InExpr:
		Walk(v, n.X)
		for _, e := range n.List {
			Walk(v, e)
		}
		if n.Subquery != nil {
			Walk(v, n.Subquery)
		}
	case *ast.LikeExpr:
		Walk(v, n.X)
		Walk(v, n.Pattern)
		if n.Escape != nil {
			Walk(v, n.Escape)
		}
	case *ast.IsNullExpr:
		Walk(v, n.X)
	case *ast.ExistsExpr:
		Walk(v, n.Subquery)
	case *ast.SubqueryExpr:
		Walk(v, n.Query)
	}
}

// WalkFunc adapts a plain function to the Visitor interface; it descends
// into a node's children only when the function returns true for it.
type WalkFunc func(node ast.Node) bool

func (f WalkFunc) Visit(node ast.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect calls f for every node in the tree rooted at node, in depth-first
// order, stopping the descent into a subtree when f returns false for its
// root.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	Walk(WalkFunc(f), node)
}
