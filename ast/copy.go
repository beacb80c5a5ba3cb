package ast

// DeepCopy returns an independent copy of node: no pointer in the result is
// shared with node, so mutating the copy (including via visitor.Cursor)
// never affects the original tree. Unlike ReleaseAST/pool.go, DeepCopy
// never touches the sync.Pool — it always allocates fresh nodes, since a
// caller that asked for an independent copy should not have it silently
// handed back to a pool by someone else's release.
func DeepCopy(node Node) Node {
	if isNil(node) {
		return nil
	}
	switch n := node.(type) {
	case *Query:
		cp := &Query{Body: copyQueryExpr(n.Body), Begin: n.Begin, EndP: n.EndP}
		if n.Offset != nil {
			off := *n.Offset
			cp.Offset = &off
		}
		cp.OrderBy = copyOrderByItems(n.OrderBy)
		return cp
	case *SelectQuery:
		cp := &SelectQuery{
			Distinct: n.Distinct,
			From:     copyTableExpr(n.From),
			Where:    copyExpr(n.Where),
			Having:   copyExpr(n.Having),
			Begin:    n.Begin,
			EndP:     n.EndP,
		}
		if n.Top != nil {
			v := *n.Top
			cp.Top = &v
		}
		for _, item := range n.SelectList {
			cp.SelectList = append(cp.SelectList, copySelectItem(item))
		}
		for _, g := range n.GroupBy {
			cp.GroupBy = append(cp.GroupBy, copyExpr(g))
		}
		return cp
	case *SetOperation:
		return &SetOperation{
			Op: n.Op, All: n.All,
			Left: copyQueryExpr(n.Left), Right: copyQueryExpr(n.Right),
			Begin: n.Begin, EndP: n.EndP,
		}
	case *ParenQueryExpr:
		return &ParenQueryExpr{Inner: copyQueryExpr(n.Inner), Begin: n.Begin, EndP: n.EndP}
	case *SelectAllColumns:
		cp := *n
		return &cp
	case *AliasedSelectItem:
		return &AliasedSelectItem{Expr: copyExpr(n.Expr), Alias: n.Alias, Begin: n.Begin, EndP: n.EndP}
	case *TableRef:
		cp := *n
		cp.Parts = append([]string(nil), n.Parts...)
		return &cp
	case *JoinedTable:
		return &JoinedTable{
			Left: copyTableExpr(n.Left), Right: copyTableExpr(n.Right),
			Join: n.Join, Natural: n.Natural, On: copyExpr(n.On),
			Using: append([]string(nil), n.Using...),
			Begin: n.Begin, EndP: n.EndP,
		}
	case *SubQueryRef:
		var q *Query
		if n.Query != nil {
			q = DeepCopy(n.Query).(*Query)
		}
		return &SubQueryRef{Query: q, Alias: n.Alias, Begin: n.Begin, EndP: n.EndP}
	case *ParenTableExpr:
		return &ParenTableExpr{Inner: copyTableExpr(n.Inner), Begin: n.Begin, EndP: n.EndP}
	case *ColumnReference:
		cp := *n
		cp.Parts = append([]string(nil), n.Parts...)
		return &cp
	case *NumericLiteral:
		cp := *n
		return &cp
	case *StringLiteral:
		cp := *n
		return &cp
	case *BooleanLiteral:
		cp := *n
		return &cp
	case *NullLiteral:
		cp := *n
		return &cp
	case *ParamRef:
		cp := *n
		return &cp
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, X: copyExpr(n.X), Begin: n.Begin, EndP: n.EndP}
	case *BinaryExpr:
		return &BinaryExpr{Op: n.Op, Left: copyExpr(n.Left), Right: copyExpr(n.Right), Begin: n.Begin, EndP: n.EndP}
	case *ParenExpr:
		return &ParenExpr{X: copyExpr(n.X), Begin: n.Begin, EndP: n.EndP}
	case *FunctionCall:
		cp := &FunctionCall{Name: n.Name, Distinct: n.Distinct, Begin: n.Begin, EndP: n.EndP}
		for _, a := range n.Args {
			cp.Args = append(cp.Args, copyExpr(a))
		}
		return cp
	case *GeometryFunction:
		cp := &GeometryFunction{Name: n.Name, Begin: n.Begin, EndP: n.EndP}
		for _, a := range n.Args {
			cp.Args = append(cp.Args, copyExpr(a))
		}
		return cp
	case *CaseExpr:
		cp := &CaseExpr{Operand: copyExpr(n.Operand), Else: copyExpr(n.Else), Begin: n.Begin, EndP: n.EndP}
		for _, w := range n.Whens {
			cp.Whens = append(cp.Whens, &WhenClause{
				Cond: copyExpr(w.Cond), Result: copyExpr(w.Result), Begin: w.Begin, EndP: w.EndP,
			})
		}
		return cp
	case *CastExpr:
		return &CastExpr{X: copyExpr(n.X), Type: n.Type, Begin: n.Begin, EndP: n.EndP}
	case *BetweenExpr:
		return &BetweenExpr{X: copyExpr(n.X), Not: n.Not, Low: copyExpr(n.Low), High: copyExpr(n.High), Begin: n.Begin, EndP: n.EndP}
	case *InExpr:
		cp := &InExpr{X: copyExpr(n.X), Not: n.Not, Begin: n.Begin, EndP: n.EndP}
		for _, e := range n.List {
			cp.List = append(cp.List, copyExpr(e))
		}
		if n.Subquery != nil {
			cp.Subquery = DeepCopy(n.Subquery).(*Query)
		}
		return cp
	case *LikeExpr:
		return &LikeExpr{X: copyExpr(n.X), Not: n.Not, Pattern: copyExpr(n.Pattern), Escape: copyExpr(n.Escape), Begin: n.Begin, EndP: n.EndP}
	case *IsNullExpr:
		return &IsNullExpr{X: copyExpr(n.X), Not: n.Not, Begin: n.Begin, EndP: n.EndP}
	case *ExistsExpr:
		var q *Query
		if n.Subquery != nil {
			q = DeepCopy(n.Subquery).(*Query)
		}
		return &ExistsExpr{Subquery: q, Begin: n.Begin, EndP: n.EndP}
	case *SubqueryExpr:
		var q *Query
		if n.Query != nil {
			q = DeepCopy(n.Query).(*Query)
		}
		return &SubqueryExpr{Query: q, Begin: n.Begin, EndP: n.EndP}
	}
	return nil
}

func copyExpr(e Expr) Expr {
	if isNil(e) {
		return nil
	}
	return DeepCopy(e).(Expr)
}

func copyTableExpr(t TableExpr) TableExpr {
	if isNil(t) {
		return nil
	}
	return DeepCopy(t).(TableExpr)
}

func copySelectItem(s SelectItem) SelectItem {
	if isNil(s) {
		return nil
	}
	return DeepCopy(s).(SelectItem)
}

func copyQueryExpr(q QueryExpr) QueryExpr {
	if isNil(q) {
		return nil
	}
	return DeepCopy(q).(QueryExpr)
}

func copyOrderByItems(items []*OrderByItem) []*OrderByItem {
	if items == nil {
		return nil
	}
	out := make([]*OrderByItem, len(items))
	for i, it := range items {
		out[i] = &OrderByItem{Expr: copyExpr(it.Expr), Ordinal: it.Ordinal, Desc: it.Desc, Begin: it.Begin, EndP: it.EndP}
	}
	return out
}
