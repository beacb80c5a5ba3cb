package translate

import (
	"strings"
	"testing"

	"adqltap/catalog"
	"adqltap/checker"
	"adqltap/dialect/ansi"
	"adqltap/dialect/postgres"
	"adqltap/parser"
)

func sampleCatalog() *catalog.Catalog {
	c := catalog.New()
	obscore := &catalog.Table{
		Name: "ObsCore",
		Columns: []*catalog.Column{
			{Name: "obs_id", Type: catalog.TypeVarchar, Principal: true},
			{Name: "s_ra", Type: catalog.TypeDouble, Principal: true},
			{Name: "s_dec", Type: catalog.TypeDouble, Principal: true},
		},
	}
	ivoa := &catalog.Schema{Name: "ivoa", Tables: []*catalog.Table{obscore}}
	c.AddSchema(ivoa)
	return c
}

func mustTranslate(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	q, perrs := parser.Parse(src)
	if len(perrs) > 0 {
		t.Fatalf("parse error: %v", perrs)
	}
	checked, checkErrs := checker.New(sampleCatalog()).Check(q)
	if len(checkErrs) > 0 {
		t.Fatalf("check error: %v", checkErrs)
	}
	result, err := Translate(checked, opts)
	if err != nil {
		t.Fatalf("translate error: %v", err)
	}
	return result
}

func TestTranslateSimpleSelectPostgres(t *testing.T) {
	r := mustTranslate(t, "SELECT obs_id, s_ra FROM ObsCore WHERE s_ra > 10", Options{Dialect: postgres.New()})
	if !strings.Contains(r.SQL, "SELECT obs_id, s_ra FROM obscore WHERE s_ra > 10") {
		t.Fatalf("unexpected SQL: %s", r.SQL)
	}
}

func TestTranslateTopBecomesLimit(t *testing.T) {
	r := mustTranslate(t, "SELECT TOP 5 obs_id FROM ObsCore", Options{Dialect: postgres.New()})
	if !strings.Contains(r.SQL, "LIMIT 5") {
		t.Fatalf("expected LIMIT 5 in SQL: %s", r.SQL)
	}
}

func TestTranslateTopCappedByRowCap(t *testing.T) {
	r := mustTranslate(t, "SELECT TOP 1000 obs_id FROM ObsCore", Options{Dialect: postgres.New(), RowCap: 100})
	if !strings.Contains(r.SQL, "LIMIT 101") {
		t.Fatalf("expected capped LIMIT 101: %s", r.SQL)
	}
}

func TestTranslateAnsiUsesFetchFirst(t *testing.T) {
	r := mustTranslate(t, "SELECT TOP 5 obs_id FROM ObsCore", Options{Dialect: ansi.New()})
	if !strings.Contains(r.SQL, "FETCH FIRST 5 ROWS ONLY") {
		t.Fatalf("expected FETCH FIRST clause: %s", r.SQL)
	}
}

func TestTranslateGeometryPostgres(t *testing.T) {
	r := mustTranslate(t,
		"SELECT obs_id FROM ObsCore WHERE CONTAINS(POINT(s_ra, s_dec), CIRCLE(10, 20, 1)) = 1",
		Options{Dialect: postgres.New()})
	if !strings.Contains(r.SQL, "@>") {
		t.Fatalf("expected pgSphere containment operator: %s", r.SQL)
	}
}

func TestTranslateGeometryAnsiUnsupported(t *testing.T) {
	q, perrs := parser.Parse("SELECT obs_id FROM ObsCore WHERE CONTAINS(POINT(s_ra, s_dec), CIRCLE(10, 20, 1)) = 1")
	if len(perrs) > 0 {
		t.Fatalf("parse error: %v", perrs)
	}
	checked, checkErrs := checker.New(sampleCatalog()).Check(q)
	if len(checkErrs) > 0 {
		t.Fatalf("check error: %v", checkErrs)
	}
	if _, err := Translate(checked, Options{Dialect: ansi.New()}); err == nil {
		t.Fatalf("expected UnsupportedByDialect error")
	}
}

func TestTranslateParamBinding(t *testing.T) {
	r := mustTranslate(t, "SELECT obs_id FROM ObsCore WHERE obs_id = :id", Options{Dialect: postgres.New()})
	if len(r.Bindings) != 1 || r.Bindings[0] != "id" {
		t.Fatalf("expected one binding named id, got %v", r.Bindings)
	}
}

func TestTranslateUDFEmitsImplRef(t *testing.T) {
	funcs := checker.DefaultFunctions()
	funcs.Register(&checker.FunctionDef{Name: "MY_UDF", Arities: []int{1}, ReturnType: catalog.TypeDouble, ImplRef: "backend_udf"})
	ck := &checker.Checker{Catalog: sampleCatalog(), Functions: funcs, Geometries: checker.DefaultGeometries()}

	q, perrs := parser.Parse("SELECT MY_UDF(s_ra) FROM ObsCore")
	if len(perrs) > 0 {
		t.Fatalf("parse error: %v", perrs)
	}
	checked, checkErrs := ck.Check(q)
	if len(checkErrs) > 0 {
		t.Fatalf("check error: %v", checkErrs)
	}
	r, err := Translate(checked, Options{Dialect: postgres.New()})
	if err != nil {
		t.Fatalf("translate error: %v", err)
	}
	if !strings.Contains(r.SQL, "backend_udf(s_ra)") {
		t.Fatalf("expected backend_udf(s_ra) in SQL, got %s", r.SQL)
	}
	if strings.Contains(r.SQL, "MY_UDF") {
		t.Fatalf("ADQL name leaked into SQL: %s", r.SQL)
	}
}

func TestTranslateFunctionWithoutImplRefUsesADQLName(t *testing.T) {
	r := mustTranslate(t, "SELECT ABS(s_ra) FROM ObsCore", Options{Dialect: postgres.New()})
	if !strings.Contains(r.SQL, "ABS(s_ra)") {
		t.Fatalf("expected ABS(s_ra) verbatim, got %s", r.SQL)
	}
}
