package catalog

import (
	"testing"

	"adqltap/ast"
	"adqltap/errs"
)

func sampleCatalog() *Catalog {
	c := New()
	obscore := &Table{
		Name: "ObsCore",
		Columns: []*Column{
			{Name: "obs_id", Type: TypeVarchar, Principal: true},
			{Name: "s_ra", Type: TypeDouble, UCD: "pos.eq.ra", Principal: true},
			{Name: "s_dec", Type: TypeDouble, UCD: "pos.eq.dec", Principal: true},
		},
	}
	ivoa := &Schema{Name: "ivoa", Tables: []*Table{obscore}}
	c.AddSchema(ivoa)
	return c
}

func TestResolveTableUnqualified(t *testing.T) {
	c := sampleCatalog()
	tbl, err := c.ResolveTable([]string{"ObsCore"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Name != "ObsCore" {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestResolveTableQualified(t *testing.T) {
	c := sampleCatalog()
	tbl, err := c.ResolveTable([]string{"ivoa", "ObsCore"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Name != "ObsCore" {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestResolveTableCaseInsensitive(t *testing.T) {
	c := sampleCatalog()
	if _, err := c.ResolveTable([]string{"obscore"}, 0); err != nil {
		t.Fatalf("expected case-insensitive match, got %v", err)
	}
}

func TestResolveTableCaseSensitiveExactMatch(t *testing.T) {
	c := sampleCatalog()
	if _, err := c.ResolveTable([]string{"ObsCore"}, ast.CaseSensitiveTable); err != nil {
		t.Fatalf("expected exact-case match to succeed, got %v", err)
	}
}

func TestResolveTableCaseSensitiveRejectsDifferentCase(t *testing.T) {
	c := sampleCatalog()
	_, err := c.ResolveTable([]string{"obscore"}, ast.CaseSensitiveTable)
	if !errs.Is(err, errs.UnresolvedTable) {
		t.Fatalf("expected a quoted reference in the wrong case to miss, got %v", err)
	}
}

func TestResolveTableNotFound(t *testing.T) {
	c := sampleCatalog()
	_, err := c.ResolveTable([]string{"NoSuchTable"}, 0)
	if !errs.Is(err, errs.UnresolvedTable) {
		t.Fatalf("expected UnresolvedTable, got %v", err)
	}
}

func TestResolveUploadedTable(t *testing.T) {
	c := sampleCatalog()
	c.AddUpload("mytable", &Table{Name: "mytable", Columns: []*Column{{Name: "x"}}})
	tbl, err := c.ResolveTable([]string{"TAP_UPLOAD", "mytable"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Name != "mytable" {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestResolveColumn(t *testing.T) {
	c := sampleCatalog()
	tbl, _ := c.ResolveTable([]string{"ObsCore"}, 0)
	col, err := ResolveColumn(tbl, "s_ra", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.UCD != "pos.eq.ra" {
		t.Fatalf("unexpected column: %+v", col)
	}
}

func TestResolveColumnNotFound(t *testing.T) {
	c := sampleCatalog()
	tbl, _ := c.ResolveTable([]string{"ObsCore"}, 0)
	_, err := ResolveColumn(tbl, "nope", 0)
	if !errs.Is(err, errs.UnresolvedColumn) {
		t.Fatalf("expected UnresolvedColumn, got %v", err)
	}
}

func TestResolveColumnCaseSensitiveRejectsDifferentCase(t *testing.T) {
	c := sampleCatalog()
	tbl, _ := c.ResolveTable([]string{"ObsCore"}, 0)
	_, err := ResolveColumn(tbl, "S_RA", ast.CaseSensitiveColumn)
	if !errs.Is(err, errs.UnresolvedColumn) {
		t.Fatalf("expected a quoted reference in the wrong case to miss, got %v", err)
	}
}
