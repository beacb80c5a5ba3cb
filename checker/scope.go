package checker

import (
	"strings"

	"adqltap/ast"
	"adqltap/catalog"
	"adqltap/errs"
)

// boundTable is one table expression visible in a scope, after resolving
// its catalog.Table and effective (possibly aliased) name.
type boundTable struct {
	effectiveName string
	table         *catalog.Table
}

// scope is the set of tables visible to column resolution within one
// SelectQuery, built by walking its FROM clause.
type scope struct {
	tables []*boundTable
	parent *scope // enclosing scope, for correlated subqueries
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent}
}

func (s *scope) add(b *boundTable) {
	s.tables = append(s.tables, b)
}

// buildScope resolves every table expression in a FROM clause against cat,
// binding aliases along the way.
func buildScope(cat *catalog.Catalog, from ast.TableExpr, parent *scope) (*scope, error) {
	s := newScope(parent)
	if from == nil {
		return s, nil
	}
	if err := bindTableExpr(cat, from, s); err != nil {
		return nil, err
	}
	return s, nil
}

func bindTableExpr(cat *catalog.Catalog, te ast.TableExpr, s *scope) error {
	switch t := te.(type) {
	case *ast.TableRef:
		tbl, err := cat.ResolveTable(t.Parts, t.CaseMask)
		if err != nil {
			return err
		}
		s.add(&boundTable{effectiveName: t.EffectiveName(), table: tbl})
		return nil
	case *ast.JoinedTable:
		if err := bindTableExpr(cat, t.Left, s); err != nil {
			return err
		}
		return bindTableExpr(cat, t.Right, s)
	case *ast.ParenTableExpr:
		return bindTableExpr(cat, t.Inner, s)
	case *ast.SubQueryRef:
		if t.Alias == "" {
			return errs.New(errs.SyntaxError, "subquery in FROM clause requires an alias")
		}
		cols, err := inferSubqueryColumns(cat, t.Query)
		if err != nil {
			return err
		}
		virtual := &catalog.Table{Name: t.Alias, Columns: cols}
		s.add(&boundTable{effectiveName: t.Alias, table: virtual})
		return nil
	}
	return errs.New(errs.SyntaxError, "unsupported table expression %T", te)
}

// resolveColumn resolves a ColumnReference against s (and, for correlated
// subqueries, its parent scopes), returning the table it came from.
func (s *scope) resolveColumn(c *ast.ColumnReference) (*catalog.Column, *boundTable, error) {
	name := c.Name()
	qualifier := c.Table()
	qualifierSensitive := c.CaseMask.Has(ast.CaseSensitiveTable)

	for cur := s; cur != nil; cur = cur.parent {
		candidates := cur.tables
		if qualifier != "" {
			var matched []*boundTable
			for _, b := range candidates {
				if matchIdent(b.effectiveName, qualifier, qualifierSensitive) {
					matched = append(matched, b)
				}
			}
			candidates = matched
			if len(candidates) == 0 {
				continue
			}
		}
		var found *catalog.Column
		var foundTable *boundTable
		count := 0
		for _, b := range candidates {
			if col, err := catalog.ResolveColumn(b.table, name, c.CaseMask); err == nil {
				found = col
				foundTable = b
				count++
			}
		}
		if count > 1 {
			return nil, nil, errs.New(errs.AmbiguousColumn, "column %q is ambiguous across joined tables", name)
		}
		if count == 1 {
			return found, foundTable, nil
		}
	}
	return nil, nil, errs.New(errs.UnresolvedColumn, "column %q not found", name)
}

// visibleColumns returns the select-star expansion for s, in FROM-clause
// order. For a bare * it takes the principal columns of each visible table
// (all of a table's columns when none is marked principal); for
// qualifier.* it takes every column of the table whose effective name
// matches qualifier case-insensitively. Column names are not qualified.
func (s *scope) visibleColumns(qualifier string) []resultColumn {
	var out []resultColumn
	for _, b := range s.tables {
		if qualifier != "" && !strings.EqualFold(b.effectiveName, qualifier) {
			continue
		}
		for _, col := range b.table.Columns {
			if qualifier == "" && !col.Principal && len(b.table.Columns) > 0 && hasPrincipalColumn(b.table) {
				continue
			}
			out = append(out, resultColumn{name: col.Name, typ: col.Type, source: col})
		}
	}
	return out
}

// matchIdent compares a and b as identifiers, honoring caseSensitive per
// catalog rule (i): case-sensitive parts require exact byte equality
// rather than the usual case-insensitive fold.
func matchIdent(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func hasPrincipalColumn(t *catalog.Table) bool {
	for _, c := range t.Columns {
		if c.Principal {
			return true
		}
	}
	return false
}
