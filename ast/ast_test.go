package ast

import (
	"testing"

	"adqltap/token"
)

func sampleQuery() *Query {
	return &Query{
		Begin: token.Pos{Line: 1, Column: 1},
		EndP:  token.Pos{Line: 1, Column: 40},
		Body: &SelectQuery{
			Begin: token.Pos{Line: 1, Column: 1},
			EndP:  token.Pos{Line: 1, Column: 40},
			SelectList: []SelectItem{
				&AliasedSelectItem{
					Expr: &ColumnReference{Parts: []string{"ra"}},
				},
			},
			From: &TableRef{Parts: []string{"ivoa", "ObsCore"}},
			Where: &BinaryExpr{
				Op:    token.GT,
				Left:  &ColumnReference{Parts: []string{"t", "ra"}},
				Right: &NumericLiteral{Text: "10"},
			},
		},
	}
}

func TestDeepCopyIndependence(t *testing.T) {
	q := sampleQuery()
	cp := DeepCopy(q).(*Query)

	orig := q.Body.(*SelectQuery).SelectList[0].(*AliasedSelectItem).Expr.(*ColumnReference)
	copied := cp.Body.(*SelectQuery).SelectList[0].(*AliasedSelectItem).Expr.(*ColumnReference)

	if orig == copied {
		t.Fatalf("DeepCopy returned a shared ColumnReference pointer")
	}

	copied.Parts[0] = "dec"
	if orig.Parts[0] != "ra" {
		t.Fatalf("mutating copy affected original: %q", orig.Parts[0])
	}

	origWhere := q.Body.(*SelectQuery).Where.(*BinaryExpr)
	copiedWhere := cp.Body.(*SelectQuery).Where.(*BinaryExpr)
	if origWhere == copiedWhere {
		t.Fatalf("DeepCopy shared the WHERE BinaryExpr node")
	}
}

func TestTableRefNameAccessors(t *testing.T) {
	tr := &TableRef{Parts: []string{"cat", "sch", "tab"}}
	if tr.Name() != "tab" || tr.Schema() != "sch" || tr.Catalog() != "cat" {
		t.Fatalf("unexpected accessors: %q %q %q", tr.Name(), tr.Schema(), tr.Catalog())
	}

	bare := &TableRef{Parts: []string{"tab"}}
	if bare.Name() != "tab" || bare.Schema() != "" || bare.Catalog() != "" {
		t.Fatalf("unexpected accessors for bare name: %+v", bare)
	}
}

func TestColumnReferenceAccessors(t *testing.T) {
	c := &ColumnReference{Parts: []string{"cat", "sch", "tab", "col"}}
	if c.Name() != "col" || c.Table() != "tab" || c.Schema() != "sch" || c.Catalog() != "cat" {
		t.Fatalf("unexpected accessors: %+v", c)
	}
}

func TestCaseSensitivityMask(t *testing.T) {
	var m CaseSensitivity
	m |= CaseSensitiveColumn | CaseSensitiveAlias
	if !m.Has(CaseSensitiveColumn) || !m.Has(CaseSensitiveAlias) {
		t.Fatalf("expected both bits set")
	}
	if m.Has(CaseSensitiveTable) {
		t.Fatalf("did not expect table bit set")
	}
}

func TestReleaseASTDoesNotPanicOnNilChildren(t *testing.T) {
	q := &Query{Body: &SelectQuery{SelectList: []SelectItem{&SelectAllColumns{}}}}
	ReleaseAST(q)
}
