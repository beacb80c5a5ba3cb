package ast

import "adqltap/token"

// PosResetter is implemented by every node type; ResetPos invalidates the
// node's cached source extent after a visitor.Cursor mutation changes its
// children, so a stale Pos()/End() is never mistaken for the original
// source location (invariant (v): any node touched by Replace/Remove loses
// its position info rather than reporting a now-inaccurate span).
type PosResetter interface {
	ResetPos()
}

func (n *Query) ResetPos()            { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *OffsetClause) ResetPos()     { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *OrderByItem) ResetPos()      { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *SelectQuery) ResetPos()      { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *SetOperation) ResetPos()     { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *ParenQueryExpr) ResetPos()   { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *SelectAllColumns) ResetPos() { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *AliasedSelectItem) ResetPos() { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *TableRef) ResetPos()         { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *JoinedTable) ResetPos()      { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *SubQueryRef) ResetPos()      { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *ParenTableExpr) ResetPos()   { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *ColumnReference) ResetPos()  { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *NumericLiteral) ResetPos()   { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *StringLiteral) ResetPos()    { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *BooleanLiteral) ResetPos()   { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *NullLiteral) ResetPos()      { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *ParamRef) ResetPos()         { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *UnaryExpr) ResetPos()        { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *BinaryExpr) ResetPos()       { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *ParenExpr) ResetPos()        { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *FunctionCall) ResetPos()     { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *GeometryFunction) ResetPos() { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *WhenClause) ResetPos()       { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *CaseExpr) ResetPos()         { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *CastExpr) ResetPos()         { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *BetweenExpr) ResetPos()      { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *InExpr) ResetPos()           { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *LikeExpr) ResetPos()         { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *IsNullExpr) ResetPos()       { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *ExistsExpr) ResetPos()       { n.Begin, n.EndP = token.NoPos, token.NoPos }
func (n *SubqueryExpr) ResetPos()     { n.Begin, n.EndP = token.NoPos, token.NoPos }
