package visitor

import (
	"adqltap/ast"
)

// CursorErrorKind classifies why a Cursor operation was rejected.
type CursorErrorKind int

const (
	// InvalidCursorState: Replace or Remove was called a second time for
	// the same visit, or after the visit callback has already returned.
	InvalidCursorState CursorErrorKind = iota
	// NotRemovable: Remove was called on a node that does not sit in a
	// removable position (e.g. a required singleton field like Query.Body).
	NotRemovable
	// IncompatibleReplacement: Replace was called with a node that does
	// not satisfy the interface required by the slot being replaced (e.g.
	// replacing a TableExpr slot with an Expr).
	IncompatibleReplacement
)

// CursorError is returned by Cursor.Replace and Cursor.Remove.
type CursorError struct {
	Kind    CursorErrorKind
	Message string
}

func (e *CursorError) Error() string { return e.Message }

func errInvalidState(msg string) error    { return &CursorError{InvalidCursorState, msg} }
func errNotRemovable(msg string) error    { return &CursorError{NotRemovable, msg} }
func errIncompatible(msg string) error     { return &CursorError{IncompatibleReplacement, msg} }

// Cursor is passed to the callback given to Apply for every node visited.
// It is valid only for the duration of that single callback invocation:
// at most one call to Replace or Remove succeeds per visit, and never
// after the callback returns (a Cursor stashed past its callback always
// fails with InvalidCursorState).
type Cursor struct {
	node      ast.Node
	setFn     func(ast.Node) error
	removeFn  func() error
	invalidFn func()
	acted     bool
	removed   bool
	done      bool
}

// Node returns the node currently at this cursor's position.
func (c *Cursor) Node() ast.Node { return c.node }

// Replace swaps the node at this position for n. n must satisfy whatever
// interface the slot requires (Expr slots reject a TableExpr, and so on).
// The replaced node's and every enclosing ancestor's cached source extent
// is invalidated (reset to token.NoPos) since it no longer describes the
// rewritten subtree; Remove does the same.
func (c *Cursor) Replace(n ast.Node) error {
	if c.done {
		return errInvalidState("cursor: Replace called after visit completed")
	}
	if c.acted {
		return errInvalidState("cursor: Replace/Remove already called for this visit")
	}
	if err := c.setFn(n); err != nil {
		return err
	}
	c.acted = true
	c.node = n
	if c.invalidFn != nil {
		c.invalidFn()
	}
	return nil
}

// Remove deletes the node at this position from its enclosing slice. It
// fails with NotRemovable if the position is a required singleton field.
func (c *Cursor) Remove() error {
	if c.done {
		return errInvalidState("cursor: Remove called after visit completed")
	}
	if c.acted {
		return errInvalidState("cursor: Replace/Remove already called for this visit")
	}
	if c.removeFn == nil {
		return errNotRemovable("cursor: node is not in a removable position")
	}
	if err := c.removeFn(); err != nil {
		return err
	}
	c.acted = true
	c.removed = true
	if c.invalidFn != nil {
		c.invalidFn()
	}
	return nil
}

func invalidatePos(n ast.Node) func() {
	if r, ok := n.(ast.PosResetter); ok {
		return r.ResetPos
	}
	return nil
}

// Apply traverses the tree rooted at root in depth-first, pre-order
// fashion, calling fn once per node with a Cursor positioned there. fn
// returns whether Apply should continue descending into that node's
// (possibly already replaced) children. Apply returns the root, which may
// itself have been replaced.
func Apply(root ast.Node, fn func(*Cursor) bool) ast.Node {
	if root == nil {
		return nil
	}
	var result ast.Node = root
	visit(root, func(n ast.Node) error { result = n; return nil }, nil, fn)
	return result
}

func visit(node ast.Node, set func(ast.Node) error, remove func() error, fn func(*Cursor) bool) {
	if node == nil {
		return
	}
	cur := &Cursor{node: node, setFn: set, removeFn: remove, invalidFn: invalidatePos(node)}
	cont := fn(cur)
	cur.done = true
	if cur.removed {
		return
	}
	n := cur.node
	if !cont {
		return
	}
	// Cursors below n also reset n's extent on mutation; each enclosing
	// level wraps fn the same way, so the whole ancestor chain is reset.
	own := invalidatePos(n)
	visitChildren(n, func(c *Cursor) bool {
		if self := c.invalidFn; own != nil {
			c.invalidFn = func() {
				if self != nil {
					self()
				}
				own()
			}
		}
		return fn(c)
	})
}

func visitChildren(node ast.Node, fn func(*Cursor) bool) {
	switch n := node.(type) {
	case *ast.Query:
		visit(n.Body, func(v ast.Node) error {
			qe, ok := v.(ast.QueryExpr)
			if !ok {
				return errIncompatible("cursor: Query.Body requires a QueryExpr")
			}
			n.Body = qe
			return nil
		}, nil, fn)
		for i := range n.OrderBy {
			idx := i
			if n.OrderBy[idx].Expr == nil {
				continue
			}
			visit(n.OrderBy[idx].Expr, func(v ast.Node) error {
				e, ok := v.(ast.Expr)
				if !ok {
					return errIncompatible("cursor: OrderByItem.Expr requires an Expr")
				}
				n.OrderBy[idx].Expr = e
				return nil
			}, nil, fn)
		}
	case *ast.SelectQuery:
		i := 0
		for i < len(n.SelectList) {
			idx := i
			removed := false
			visit(n.SelectList[idx], func(v ast.Node) error {
				si, ok := v.(ast.SelectItem)
				if !ok {
					return errIncompatible("cursor: select item requires a SelectItem")
				}
				n.SelectList[idx] = si
				return nil
			}, func() error {
				n.SelectList = append(n.SelectList[:idx], n.SelectList[idx+1:]...)
				removed = true
				return nil
			}, fn)
			if !removed {
				i++
			}
		}
		if n.From != nil {
			visit(n.From, func(v ast.Node) error {
				te, ok := v.(ast.TableExpr)
				if !ok {
					return errIncompatible("cursor: FROM requires a TableExpr")
				}
				n.From = te
				return nil
			}, nil, fn)
		}
		if n.Where != nil {
			visit(n.Where, exprSetter(func(e ast.Expr) { n.Where = e }), nil, fn)
		}
		i = 0
		for i < len(n.GroupBy) {
			idx := i
			removed := false
			visit(n.GroupBy[idx], exprSetter(func(e ast.Expr) { n.GroupBy[idx] = e }), func() error {
				n.GroupBy = append(n.GroupBy[:idx], n.GroupBy[idx+1:]...)
				removed = true
				return nil
			}, fn)
			if !removed {
				i++
			}
		}
		if n.Having != nil {
			visit(n.Having, exprSetter(func(e ast.Expr) { n.Having = e }), nil, fn)
		}
	case *ast.SetOperation:
		visit(n.Left, queryExprSetter(func(q ast.QueryExpr) { n.Left = q }), nil, fn)
		visit(n.Right, queryExprSetter(func(q ast.QueryExpr) { n.Right = q }), nil, fn)
	case *ast.ParenQueryExpr:
		visit(n.Inner, queryExprSetter(func(q ast.QueryExpr) { n.Inner = q }), nil, fn)
	case *ast.AliasedSelectItem:
		visit(n.Expr, exprSetter(func(e ast.Expr) { n.Expr = e }), nil, fn)
	case *ast.JoinedTable:
		visit(n.Left, tableExprSetter(func(t ast.TableExpr) { n.Left = t }), nil, fn)
		visit(n.Right, tableExprSetter(func(t ast.TableExpr) { n.Right = t }), nil, fn)
		if n.On != nil {
			visit(n.On, exprSetter(func(e ast.Expr) { n.On = e }), nil, fn)
		}
	case *ast.SubQueryRef:
		if n.Query != nil {
			visit(n.Query, queryPtrSetter(func(q *ast.Query) { n.Query = q }), nil, fn)
		}
	case *ast.ParenTableExpr:
		visit(n.Inner, tableExprSetter(func(t ast.TableExpr) { n.Inner = t }), nil, fn)
	case *ast.UnaryExpr:
		visit(n.X, exprSetter(func(e ast.Expr) { n.X = e }), nil, fn)
	case *ast.BinaryExpr:
		visit(n.Left, exprSetter(func(e ast.Expr) { n.Left = e }), nil, fn)
		visit(n.Right, exprSetter(func(e ast.Expr) { n.Right = e }), nil, fn)
	case *ast.ParenExpr:
		visit(n.X, exprSetter(func(e ast.Expr) { n.X = e }), nil, fn)
	case *ast.FunctionCall:
		visitExprSlice(n.Args, func(s []ast.Expr) { n.Args = s }, fn)
	case *ast.GeometryFunction:
		visitExprSlice(n.Args, func(s []ast.Expr) { n.Args = s }, fn)
	case *ast.CaseExpr:
		if n.Operand != nil {
			visit(n.Operand, exprSetter(func(e ast.Expr) { n.Operand = e }), nil, fn)
		}
		for _, w := range n.Whens {
			wc := w
			visit(wc.Cond, exprSetter(func(e ast.Expr) { wc.Cond = e }), nil, fn)
			visit(wc.Result, exprSetter(func(e ast.Expr) { wc.Result = e }), nil, fn)
		}
		if n.Else != nil {
			visit(n.Else, exprSetter(func(e ast.Expr) { n.Else = e }), nil, fn)
		}
	case *ast.CastExpr:
		visit(n.X, exprSetter(func(e ast.Expr) { n.X = e }), nil, fn)
	case *ast.BetweenExpr:
		visit(n.X, exprSetter(func(e ast.Expr) { n.X = e }), nil, fn)
		visit(n.Low, exprSetter(func(e ast.Expr) { n.Low = e }), nil, fn)
		visit(n.High, exprSetter(func(e ast.Expr) { n.High = e }), nil, fn)
	case *ast.InExpr:
		visit(n.X, exprSetter(func(e ast.Expr) { n.X = e }), nil, fn)
		visitExprSlice(n.List, func(s []ast.Expr) { n.List = s }, fn)
		if n.Subquery != nil {
			visit(n.Subquery, queryPtrSetter(func(q *ast.Query) { n.Subquery = q }), nil, fn)
		}
	case *ast.LikeExpr:
		visit(n.X, exprSetter(func(e ast.Expr) { n.X = e }), nil, fn)
		visit(n.Pattern, exprSetter(func(e ast.Expr) { n.Pattern = e }), nil, fn)
		if n.Escape != nil {
			visit(n.Escape, exprSetter(func(e ast.Expr) { n.Escape = e }), nil, fn)
		}
	case *ast.IsNullExpr:
		visit(n.X, exprSetter(func(e ast.Expr) { n.X = e }), nil, fn)
	case *ast.ExistsExpr:
		if n.Subquery != nil {
			visit(n.Subquery, queryPtrSetter(func(q *ast.Query) { n.Subquery = q }), nil, fn)
		}
	case *ast.SubqueryExpr:
		if n.Query != nil {
			visit(n.Query, queryPtrSetter(func(q *ast.Query) { n.Query = q }), nil, fn)
		}
	}
}

func visitExprSlice(args []ast.Expr, set func([]ast.Expr), fn func(*Cursor) bool) {
	i := 0
	for i < len(args) {
		idx := i
		removed := false
		visit(args[idx], exprSetter(func(e ast.Expr) { args[idx] = e }), func() error {
			args = append(args[:idx], args[idx+1:]...)
			set(args)
			removed = true
			return nil
		}, fn)
		if !removed {
			i++
		} else {
			set(args)
		}
	}
	set(args)
}

func exprSetter(set func(ast.Expr)) func(ast.Node) error {
	return func(v ast.Node) error {
		e, ok := v.(ast.Expr)
		if !ok {
			return errIncompatible("cursor: slot requires an Expr")
		}
		set(e)
		return nil
	}
}

func tableExprSetter(set func(ast.TableExpr)) func(ast.Node) error {
	return func(v ast.Node) error {
		t, ok := v.(ast.TableExpr)
		if !ok {
			return errIncompatible("cursor: slot requires a TableExpr")
		}
		set(t)
		return nil
	}
}

func queryExprSetter(set func(ast.QueryExpr)) func(ast.Node) error {
	return func(v ast.Node) error {
		q, ok := v.(ast.QueryExpr)
		if !ok {
			return errIncompatible("cursor: slot requires a QueryExpr")
		}
		set(q)
		return nil
	}
}

func queryPtrSetter(set func(*ast.Query)) func(ast.Node) error {
	return func(v ast.Node) error {
		q, ok := v.(*ast.Query)
		if !ok {
			return errIncompatible("cursor: slot requires a *ast.Query")
		}
		set(q)
		return nil
	}
}
