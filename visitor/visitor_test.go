package visitor

import (
	"testing"

	"adqltap/ast"
	"adqltap/token"
)

func sampleQuery() *ast.Query {
	return &ast.Query{
		Body: &ast.SelectQuery{
			SelectList: []ast.SelectItem{
				&ast.AliasedSelectItem{Expr: &ast.ColumnReference{Parts: []string{"ra"}}},
				&ast.AliasedSelectItem{Expr: &ast.ColumnReference{Parts: []string{"dec"}}},
			},
			From: &ast.TableRef{Parts: []string{"ObsCore"}},
			Where: &ast.BinaryExpr{
				Op:    token.GT,
				Left:  &ast.ColumnReference{Parts: []string{"ra"}},
				Right: &ast.NumericLiteral{Text: "10"},
			},
		},
	}
}

func TestWalkVisitsColumnReferences(t *testing.T) {
	q := sampleQuery()
	var names []string
	Inspect(q, func(n ast.Node) bool {
		if c, ok := n.(*ast.ColumnReference); ok {
			names = append(names, c.Name())
		}
		return true
	})
	if len(names) != 3 {
		t.Fatalf("expected 3 column references, got %v", names)
	}
}

func TestWalkStopsDescendingOnNilReturn(t *testing.T) {
	q := sampleQuery()
	visited := map[string]bool{}
	Walk(WalkFunc(func(n ast.Node) bool {
		if sq, ok := n.(*ast.SelectQuery); ok {
			visited["select"] = true
			_ = sq
			return false // do not descend
		}
		if _, ok := n.(*ast.ColumnReference); ok {
			visited["column"] = true
		}
		visited["other"] = true
		return true
	}), q)
	if !visited["select"] {
		t.Fatalf("expected to visit SelectQuery")
	}
	if visited["column"] {
		t.Fatalf("expected Walk not to descend below the SelectQuery")
	}
}

func TestRewriteReplacesColumnReferences(t *testing.T) {
	q := sampleQuery()
	result := Rewrite(q, func(n ast.Node) ast.Node {
		if c, ok := n.(*ast.ColumnReference); ok && c.Name() == "ra" {
			return &ast.ColumnReference{Parts: []string{"right_ascension"}}
		}
		return nil
	})
	rq := result.(*ast.Query)
	where := rq.Body.(*ast.SelectQuery).Where.(*ast.BinaryExpr)
	col := where.Left.(*ast.ColumnReference)
	if col.Name() != "right_ascension" {
		t.Fatalf("expected rewritten column name, got %q", col.Name())
	}
}

func TestCursorReplace(t *testing.T) {
	q := sampleQuery()
	Apply(q, func(c *Cursor) bool {
		if col, ok := c.Node().(*ast.ColumnReference); ok && col.Name() == "dec" {
			if err := c.Replace(&ast.ColumnReference{Parts: []string{"declination"}}); err != nil {
				t.Fatalf("Replace failed: %v", err)
			}
		}
		return true
	})
	item := q.Body.(*ast.SelectQuery).SelectList[1].(*ast.AliasedSelectItem)
	if item.Expr.(*ast.ColumnReference).Name() != "declination" {
		t.Fatalf("replacement did not take effect")
	}
}

func TestCursorReplaceTwiceFails(t *testing.T) {
	q := sampleQuery()
	var secondErr error
	Apply(q, func(c *Cursor) bool {
		if _, ok := c.Node().(*ast.NumericLiteral); ok {
			_ = c.Replace(&ast.NumericLiteral{Text: "20"})
			secondErr = c.Replace(&ast.NumericLiteral{Text: "30"})
		}
		return true
	})
	if secondErr == nil {
		t.Fatalf("expected second Replace to fail")
	}
	cerr, ok := secondErr.(*CursorError)
	if !ok || cerr.Kind != InvalidCursorState {
		t.Fatalf("expected InvalidCursorState, got %v", secondErr)
	}
}

func TestCursorRemoveFromSelectList(t *testing.T) {
	q := sampleQuery()
	Apply(q, func(c *Cursor) bool {
		if item, ok := c.Node().(*ast.AliasedSelectItem); ok {
			if col, ok := item.Expr.(*ast.ColumnReference); ok && col.Name() == "dec" {
				if err := c.Remove(); err != nil {
					t.Fatalf("Remove failed: %v", err)
				}
			}
		}
		return true
	})
	sel := q.Body.(*ast.SelectQuery).SelectList
	if len(sel) != 1 {
		t.Fatalf("expected 1 select item after Remove, got %d", len(sel))
	}
}

func TestCursorRemoveOnNonRemovableFails(t *testing.T) {
	q := sampleQuery()
	var err error
	Apply(q, func(c *Cursor) bool {
		if _, ok := c.Node().(*ast.Query); ok {
			err = c.Remove()
		}
		return true
	})
	if err == nil {
		t.Fatalf("expected Remove on Query root to fail")
	}
	cerr, ok := err.(*CursorError)
	if !ok || cerr.Kind != NotRemovable {
		t.Fatalf("expected NotRemovable, got %v", err)
	}
}

func TestCursorMutationInvalidatesParentPosition(t *testing.T) {
	q := sampleQuery()
	sel := q.Body.(*ast.SelectQuery)
	sel.Begin = token.Pos{Line: 1, Column: 1}
	sel.EndP = token.Pos{Line: 1, Column: 50}

	Apply(q, func(c *Cursor) bool {
		if _, ok := c.Node().(*ast.TableRef); ok {
			_ = c.Replace(&ast.TableRef{Parts: []string{"OtherTable"}})
		}
		return true
	})

	if sel.Pos().IsValid() || sel.End().IsValid() {
		t.Fatalf("expected parent SelectQuery position to be invalidated after mutation")
	}
}
