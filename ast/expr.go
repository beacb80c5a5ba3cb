package ast

import "adqltap/token"

// ColumnReference names a column, optionally dotted
// table.column/schema.table.column/catalog.schema.table.column. Parts holds
// the dotted segments in source order; Name/Table/Schema/Catalog read them
// back from the right, mirroring TableRef.
type ColumnReference struct {
	Parts    []string
	CaseMask CaseSensitivity

	Begin, EndP token.Pos
}

func (c *ColumnReference) Pos() token.Pos { return c.Begin }
func (c *ColumnReference) End() token.Pos { return c.EndP }
func (*ColumnReference) node()            {}
func (*ColumnReference) exprNode()        {}

func (c *ColumnReference) Name() string    { return partAt(c.Parts, 0) }
func (c *ColumnReference) Table() string   { return partAt(c.Parts, 1) }
func (c *ColumnReference) Schema() string  { return partAt(c.Parts, 2) }
func (c *ColumnReference) Catalog() string { return partAt(c.Parts, 3) }

// NumericLiteral is an integer or floating-point literal, kept as its
// original source text so translation never loses precision by round-
// tripping through float64.
type NumericLiteral struct {
	Text  string
	Float bool

	Begin, EndP token.Pos
}

func (n *NumericLiteral) Pos() token.Pos { return n.Begin }
func (n *NumericLiteral) End() token.Pos { return n.EndP }
func (*NumericLiteral) node()            {}
func (*NumericLiteral) exprNode()        {}

// StringLiteral is a quoted ADQL string literal.
type StringLiteral struct {
	Value string

	Begin, EndP token.Pos
}

func (s *StringLiteral) Pos() token.Pos { return s.Begin }
func (s *StringLiteral) End() token.Pos { return s.EndP }
func (*StringLiteral) node()            {}
func (*StringLiteral) exprNode()        {}

// BooleanLiteral is TRUE or FALSE.
type BooleanLiteral struct {
	Value bool

	Begin, EndP token.Pos
}

func (b *BooleanLiteral) Pos() token.Pos { return b.Begin }
func (b *BooleanLiteral) End() token.Pos { return b.EndP }
func (*BooleanLiteral) node()            {}
func (*BooleanLiteral) exprNode()        {}

// NullLiteral is the NULL literal.
type NullLiteral struct {
	Begin, EndP token.Pos
}

func (n *NullLiteral) Pos() token.Pos { return n.Begin }
func (n *NullLiteral) End() token.Pos { return n.EndP }
func (*NullLiteral) node()            {}
func (*NullLiteral) exprNode()        {}

// ParamRef is a bind parameter reference (:name or ?), used by uploaded
// table parameters and prepared job parameters.
type ParamRef struct {
	Name string // "" for positional "?"

	Begin, EndP token.Pos
}

func (p *ParamRef) Pos() token.Pos { return p.Begin }
func (p *ParamRef) End() token.Pos { return p.EndP }
func (*ParamRef) node()            {}
func (*ParamRef) exprNode()        {}

// UnaryExpr is a prefix operator applied to a single operand: -x, +x, NOT x.
type UnaryExpr struct {
	Op token.Token
	X  Expr

	Begin, EndP token.Pos
}

func (u *UnaryExpr) Pos() token.Pos { return u.Begin }
func (u *UnaryExpr) End() token.Pos { return u.EndP }
func (*UnaryExpr) node()            {}
func (*UnaryExpr) exprNode()        {}

// BinaryExpr covers arithmetic, comparison, concatenation (||) and logical
// AND/OR, disambiguated by Op.
type BinaryExpr struct {
	Op          token.Token
	Left, Right Expr

	Begin, EndP token.Pos
}

func (b *BinaryExpr) Pos() token.Pos { return b.Begin }
func (b *BinaryExpr) End() token.Pos { return b.EndP }
func (*BinaryExpr) node()            {}
func (*BinaryExpr) exprNode()        {}

// ParenExpr is a parenthesized expression, kept in the tree (rather than
// discarded) so render_adql can round-trip user grouping.
type ParenExpr struct {
	X Expr

	Begin, EndP token.Pos
}

func (p *ParenExpr) Pos() token.Pos { return p.Begin }
func (p *ParenExpr) End() token.Pos { return p.EndP }
func (*ParenExpr) node()            {}
func (*ParenExpr) exprNode()        {}

// FunctionCall is a scalar or aggregate function invocation, including
// user-defined functions; the checker resolves Name against the function
// registry to decide arity, return type and (for UDFs) the dialect
// ImplRef. Geometry functions are represented separately as
// GeometryFunction so the translator can special-case them without a name
// switch.
type FunctionCall struct {
	Name     string
	Distinct bool
	Args     []Expr

	Begin, EndP token.Pos
}

func (f *FunctionCall) Pos() token.Pos { return f.Begin }
func (f *FunctionCall) End() token.Pos { return f.EndP }
func (*FunctionCall) node()            {}
func (*FunctionCall) exprNode()        {}

// GeometryName enumerates ADQL's geometric function vocabulary.
type GeometryName string

const (
	GeomPoint     GeometryName = "POINT"
	GeomCircle    GeometryName = "CIRCLE"
	GeomBox       GeometryName = "BOX"
	GeomPolygon   GeometryName = "POLYGON"
	GeomRegion    GeometryName = "REGION"
	GeomCentroid  GeometryName = "CENTROID"
	GeomDistance  GeometryName = "DISTANCE"
	GeomArea      GeometryName = "AREA"
	GeomCoord1    GeometryName = "COORD1"
	GeomCoord2    GeometryName = "COORD2"
	GeomCoordsys  GeometryName = "COORDSYS"
	GeomContains  GeometryName = "CONTAINS"
	GeomIntersect GeometryName = "INTERSECTS"
)

// GeometryFunction is one of ADQL's geometric constructors/predicates
// (§2 of the geometry vocabulary). Args are positional per Name's fixed
// arity; a leading string-literal coordinate-system argument, where the
// grammar allows one, is accepted by the parser and not kept, so Args
// holds only the positional arguments.
type GeometryFunction struct {
	Name GeometryName
	Args []Expr

	Begin, EndP token.Pos
}

func (g *GeometryFunction) Pos() token.Pos { return g.Begin }
func (g *GeometryFunction) End() token.Pos { return g.EndP }
func (*GeometryFunction) node()            {}
func (*GeometryFunction) exprNode()        {}

// WhenClause is one WHEN cond THEN result arm of a CaseExpr.
type WhenClause struct {
	Cond   Expr
	Result Expr

	Begin, EndP token.Pos
}

func (w *WhenClause) Pos() token.Pos { return w.Begin }
func (w *WhenClause) End() token.Pos { return w.EndP }
func (*WhenClause) node()            {}

// CaseExpr is a CASE expression, searched (Operand == nil) or simple.
type CaseExpr struct {
	Operand Expr
	Whens   []*WhenClause
	Else    Expr

	Begin, EndP token.Pos
}

func (c *CaseExpr) Pos() token.Pos { return c.Begin }
func (c *CaseExpr) End() token.Pos { return c.EndP }
func (*CaseExpr) node()            {}
func (*CaseExpr) exprNode()        {}

// CastExpr is CAST(x AS type).
type CastExpr struct {
	X    Expr
	Type string

	Begin, EndP token.Pos
}

func (c *CastExpr) Pos() token.Pos { return c.Begin }
func (c *CastExpr) End() token.Pos { return c.EndP }
func (*CastExpr) node()            {}
func (*CastExpr) exprNode()        {}

// BetweenExpr is `x [NOT] BETWEEN low AND high`.
type BetweenExpr struct {
	X         Expr
	Not       bool
	Low, High Expr

	Begin, EndP token.Pos
}

func (b *BetweenExpr) Pos() token.Pos { return b.Begin }
func (b *BetweenExpr) End() token.Pos { return b.EndP }
func (*BetweenExpr) node()            {}
func (*BetweenExpr) exprNode()        {}

// InExpr is `x [NOT] IN (list)` or `x [NOT] IN (subquery)`.
type InExpr struct {
	X        Expr
	Not      bool
	List     []Expr
	Subquery *Query

	Begin, EndP token.Pos
}

func (i *InExpr) Pos() token.Pos { return i.Begin }
func (i *InExpr) End() token.Pos { return i.EndP }
func (*InExpr) node()            {}
func (*InExpr) exprNode()        {}

// LikeExpr is `x [NOT] LIKE pattern [ESCAPE esc]`.
type LikeExpr struct {
	X       Expr
	Not     bool
	Pattern Expr
	Escape  Expr

	Begin, EndP token.Pos
}

func (l *LikeExpr) Pos() token.Pos { return l.Begin }
func (l *LikeExpr) End() token.Pos { return l.EndP }
func (*LikeExpr) node()            {}
func (*LikeExpr) exprNode()        {}

// IsNullExpr is `x IS [NOT] NULL`.
type IsNullExpr struct {
	X   Expr
	Not bool

	Begin, EndP token.Pos
}

func (i *IsNullExpr) Pos() token.Pos { return i.Begin }
func (i *IsNullExpr) End() token.Pos { return i.EndP }
func (*IsNullExpr) node()            {}
func (*IsNullExpr) exprNode()        {}

// ExistsExpr is `EXISTS (subquery)`.
type ExistsExpr struct {
	Subquery *Query

	Begin, EndP token.Pos
}

func (e *ExistsExpr) Pos() token.Pos { return e.Begin }
func (e *ExistsExpr) End() token.Pos { return e.EndP }
func (*ExistsExpr) node()            {}
func (*ExistsExpr) exprNode()        {}

// SubqueryExpr is a scalar subquery used in expression position.
type SubqueryExpr struct {
	Query *Query

	Begin, EndP token.Pos
}

func (s *SubqueryExpr) Pos() token.Pos { return s.Begin }
func (s *SubqueryExpr) End() token.Pos { return s.EndP }
func (*SubqueryExpr) node()            {}
func (*SubqueryExpr) exprNode()        {}
