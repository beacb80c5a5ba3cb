// Package catalog holds the schema metadata an ADQL query is checked and
// translated against: catalogs, schemas, tables, columns, and foreign keys,
// plus the resolution rules for matching an AST's (possibly partial)
// dotted table/column name against it.
package catalog

import (
	"strings"

	"adqltap/ast"
	"adqltap/errs"
)

// ColumnType is the catalog's portable scalar type vocabulary; the
// translator maps these onto each dialect's concrete SQL types.
type ColumnType int

const (
	TypeUnknown ColumnType = iota
	TypeUnknownNumeric // a numeric expression whose precise width can't be inferred, e.g. mixed-type arithmetic
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeReal
	TypeDouble
	TypeChar
	TypeVarchar
	TypeBoolean
	TypeTimestamp
	TypeBinary
	TypeVarbinary
	TypeBlob
	TypeClob
	TypePoint
	TypeCircle
	TypeRegion
)

// Column describes one table column.
type Column struct {
	Name        string
	Type        ColumnType
	Unit        string
	UCD         string
	Description string
	Indexed     bool
	Principal   bool // part of the table's default "SELECT *" surface
}

// ForeignKey describes a declared relationship from this table to another,
// used by the checker to validate explicit JOIN ON/USING clauses and to
// suggest join columns.
type ForeignKey struct {
	FromColumn string
	ToTable    string // dotted schema.table
	ToColumn   string
}

// Table describes one queryable table or view.
type Table struct {
	Name        string
	Description string
	Columns     []*Column
	ForeignKeys []*ForeignKey

	byName map[string]*Column
}

// column resolves name against t's columns. When caseSensitive is true
// (the reference's part was double-quoted) it requires exact byte
// equality per catalog rule (i); otherwise it folds through the
// lazily-built lowercase index.
func (t *Table) column(name string, caseSensitive bool) (*Column, bool) {
	if caseSensitive {
		for _, c := range t.Columns {
			if c.Name == name {
				return c, true
			}
		}
		return nil, false
	}
	if t.byName == nil {
		t.byName = make(map[string]*Column, len(t.Columns))
		for _, c := range t.Columns {
			t.byName[strings.ToLower(c.Name)] = c
		}
	}
	c, ok := t.byName[strings.ToLower(name)]
	return c, ok
}

// Schema groups a set of tables under one name, matching ADQL's
// catalog.schema.table addressing.
type Schema struct {
	Name   string
	Tables []*Table

	byName map[string]*Table
}

// table resolves name against s's tables, honoring caseSensitive the same
// way Table.column does.
func (s *Schema) table(name string, caseSensitive bool) (*Table, bool) {
	if caseSensitive {
		for _, t := range s.Tables {
			if t.Name == name {
				return t, true
			}
		}
		return nil, false
	}
	if s.byName == nil {
		s.byName = make(map[string]*Table, len(s.Tables))
		for _, t := range s.Tables {
			s.byName[strings.ToLower(t.Name)] = t
		}
	}
	t, ok := s.byName[strings.ToLower(name)]
	return t, ok
}

// Catalog is the top-level schema metadata store for one TAP service
// instance, plus any per-session uploaded tables.
type Catalog struct {
	Schemas  []*Schema
	Uploaded map[string]*Table // keyed by upload label, e.g. "mytable" in TAP_UPLOAD.mytable

	byName map[string]*Schema
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{Uploaded: make(map[string]*Table)}
}

// schema resolves name against c's schemas, honoring caseSensitive the
// same way Table.column does.
func (c *Catalog) schema(name string, caseSensitive bool) (*Schema, bool) {
	if caseSensitive {
		for _, s := range c.Schemas {
			if s.Name == name {
				return s, true
			}
		}
		return nil, false
	}
	if c.byName == nil {
		c.byName = make(map[string]*Schema, len(c.Schemas))
		for _, s := range c.Schemas {
			c.byName[strings.ToLower(s.Name)] = s
		}
	}
	s, ok := c.byName[strings.ToLower(name)]
	return s, ok
}

// AddSchema registers a schema, invalidating the name index.
func (c *Catalog) AddSchema(s *Schema) {
	c.Schemas = append(c.Schemas, s)
	c.byName = nil
}

// AddUpload registers a user-uploaded table under TAP_UPLOAD.
func (c *Catalog) AddUpload(label string, t *Table) {
	if c.Uploaded == nil {
		c.Uploaded = make(map[string]*Table)
	}
	c.Uploaded[strings.ToLower(label)] = t
}

// ResolveTable resolves a dotted name (1 to 2 parts: [schema.]table) to a
// concrete Table. A bare table name is looked up among the uploaded tables
// first, then in each schema in catalog order, the first match winning; a
// schema-qualified name is looked up in TAP_UPLOAD or in the named schema
// only; anything else is UnresolvedTable. There is no default schema. mask's CaseSensitiveTable/CaseSensitiveSchema bits
// force byte-exact matching on the corresponding part, per catalog rule
// (i): two references with identical lowercased form but different
// case-sensitivity flags are never treated as equal.
func (c *Catalog) ResolveTable(parts []string, mask ast.CaseSensitivity) (*Table, error) {
	tableSensitive := mask.Has(ast.CaseSensitiveTable)
	schemaSensitive := mask.Has(ast.CaseSensitiveSchema)
	switch len(parts) {
	case 1:
		name := parts[0]
		if strings.EqualFold(parts[0], "") {
			return nil, errs.New(errs.UnresolvedTable, "empty table name")
		}
		if t, ok := c.lookupUpload(name); ok {
			return t, nil
		}
		for _, s := range c.Schemas {
			if t, ok := s.table(name, tableSensitive); ok {
				return t, nil
			}
		}
		return nil, errs.New(errs.UnresolvedTable, "table %q not found", name)
	case 2:
		schemaName, tableName := parts[0], parts[1]
		if strings.EqualFold(schemaName, "TAP_UPLOAD") {
			if t, ok := c.lookupUpload(tableName); ok {
				return t, nil
			}
			return nil, errs.New(errs.UnresolvedTable, "uploaded table %q not found", tableName)
		}
		s, ok := c.schema(schemaName, schemaSensitive)
		if !ok {
			return nil, errs.New(errs.UnresolvedTable, "schema %q not found", schemaName)
		}
		t, ok := s.table(tableName, tableSensitive)
		if !ok {
			return nil, errs.New(errs.UnresolvedTable, "table %q not found in schema %q", tableName, schemaName)
		}
		return t, nil
	default:
		return nil, errs.New(errs.UnresolvedTable, "table name has too many qualifying parts: %v", parts)
	}
}

func (c *Catalog) lookupUpload(label string) (*Table, bool) {
	t, ok := c.Uploaded[strings.ToLower(label)]
	return t, ok
}

// ResolveColumn resolves a column name against a single table's columns.
// mask's CaseSensitiveColumn bit forces byte-exact matching, per catalog
// rule (i).
func ResolveColumn(t *Table, name string, mask ast.CaseSensitivity) (*Column, error) {
	if c, ok := t.column(name, mask.Has(ast.CaseSensitiveColumn)); ok {
		return c, nil
	}
	return nil, errs.New(errs.UnresolvedColumn, "column %q not found in table %q", name, t.Name)
}
