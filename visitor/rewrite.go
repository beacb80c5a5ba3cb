package visitor

import "adqltap/ast"

// ApplyFunc is called once per node during Rewrite, after that node's
// children have already been rewritten. Returning a different Node replaces
// node in its parent; returning node unchanged (or nil to mean "no change")
// leaves the tree as rewritten so far.
type ApplyFunc func(ast.Node) ast.Node

// Rewrite rewrites node's children first (post-order), then applies f to
// node itself, returning whatever f returns: children are rebuilt
// bottom-up so f always sees an already-rewritten subtree.
func Rewrite(node ast.Node, f ApplyFunc) ast.Node {
	if node == nil {
		return nil
	}
	rewriteChildren(node, f)
	if r := f(node); r != nil {
		return r
	}
	return node
}

// RewriteExpr is a convenience wrapper for the common case of rewriting an
// expression subtree and getting an Expr back.
func RewriteExpr(e ast.Expr, f ApplyFunc) ast.Expr {
	if e == nil {
		return nil
	}
	r := Rewrite(e, f)
	if r == nil {
		return nil
	}
	return r.(ast.Expr)
}

func rewriteChildren(node ast.Node, f ApplyFunc) {
	switch n := node.(type) {
	case *ast.Query:
		n.Body = rewriteQueryExpr(n.Body, f)
		for i, o := range n.OrderBy {
			if o.Expr != nil {
				n.OrderBy[i].Expr = RewriteExpr(o.Expr, f)
			}
		}
	case *ast.SelectQuery:
		for i, item := range n.SelectList {
			if r := Rewrite(item, f); r != nil {
				n.SelectList[i] = r.(ast.SelectItem)
			}
		}
		if n.From != nil {
			n.From = rewriteTableExpr(n.From, f)
		}
		if n.Where != nil {
			n.Where = RewriteExpr(n.Where, f)
		}
		for i, g := range n.GroupBy {
			n.GroupBy[i] = RewriteExpr(g, f)
		}
		if n.Having != nil {
			n.Having = RewriteExpr(n.Having, f)
		}
	case *ast.SetOperation:
		n.Left = rewriteQueryExpr(n.Left, f)
		n.Right = rewriteQueryExpr(n.Right, f)
	case *ast.ParenQueryExpr:
		n.Inner = rewriteQueryExpr(n.Inner, f)
	case *ast.AliasedSelectItem:
		n.Expr = RewriteExpr(n.Expr, f)
	case *ast.JoinedTable:
		n.Left = rewriteTableExpr(n.Left, f)
		n.Right = rewriteTableExpr(n.Right, f)
		if n.On != nil {
			n.On = RewriteExpr(n.On, f)
		}
	case *ast.SubQueryRef:
		if n.Query != nil {
			if r := Rewrite(n.Query, f); r != nil {
				n.Query = r.(*ast.Query)
			}
		}
	case *ast.ParenTableExpr:
		n.Inner = rewriteTableExpr(n.Inner, f)
	case *ast.UnaryExpr:
		n.X = RewriteExpr(n.X, f)
	case *ast.BinaryExpr:
		n.Left = RewriteExpr(n.Left, f)
		n.Right = RewriteExpr(n.Right, f)
	case *ast.ParenExpr:
		n.X = RewriteExpr(n.X, f)
	case *ast.FunctionCall:
		for i, a := range n.Args {
			n.Args[i] = RewriteExpr(a, f)
		}
	case *ast.GeometryFunction:
		for i, a := range n.Args {
			n.Args[i] = RewriteExpr(a, f)
		}
	case *ast.CaseExpr:
		if n.Operand != nil {
			n.Operand = RewriteExpr(n.Operand, f)
		}
		for _, w := range n.Whens {
			w.Cond = RewriteExpr(w.Cond, f)
			w.Result = RewriteExpr(w.Result, f)
		}
		if n.Else != nil {
			n.Else = RewriteExpr(n.Else, f)
		}
	case *ast.CastExpr:
		n.X = RewriteExpr(n.X, f)
	case *ast.BetweenExpr:
		n.X = RewriteExpr(n.X, f)
		n.Low = RewriteExpr(n.Low, f)
		n.High = RewriteExpr(n.High, f)
	case *ast.InExpr:
		n.X = RewriteExpr(n.X, f)
		for i, e := range n.List {
			n.List[i] = RewriteExpr(e, f)
		}
		if n.Subquery != nil {
			if r := Rewrite(n.Subquery, f); r != nil {
				n.Subquery = r.(*ast.Query)
			}
		}
	case *ast.LikeExpr:
		n.X = RewriteExpr(n.X, f)
		n.Pattern = RewriteExpr(n.Pattern, f)
		if n.Escape != nil {
			n.Escape = RewriteExpr(n.Escape, f)
		}
	case *ast.IsNullExpr:
		n.X = RewriteExpr(n.X, f)
	case *ast.ExistsExpr:
		if n.Subquery != nil {
			if r := Rewrite(n.Subquery, f); r != nil {
				n.Subquery = r.(*ast.Query)
			}
		}
	case *ast.SubqueryExpr:
		if n.Query != nil {
			if r := Rewrite(n.Query, f); r != nil {
				n.Query = r.(*ast.Query)
			}
		}
	}
}

func rewriteQueryExpr(q ast.QueryExpr, f ApplyFunc) ast.QueryExpr {
	if q == nil {
		return nil
	}
	r := Rewrite(q, f)
	if r == nil {
		return nil
	}
	return r.(ast.QueryExpr)
}

func rewriteTableExpr(t ast.TableExpr, f ApplyFunc) ast.TableExpr {
	if t == nil {
		return nil
	}
	r := Rewrite(t, f)
	if r == nil {
		return nil
	}
	return r.(ast.TableExpr)
}
