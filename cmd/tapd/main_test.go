package main

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalogJSON = `{
  "schemas": [
    {
      "name": "ivoa",
      "tables": [
        {
          "name": "ObsCore",
          "columns": [
            {"name": "obs_id", "type": "VARCHAR", "principal": true},
            {"name": "s_ra", "type": "DOUBLE", "principal": true},
            {"name": "s_dec", "type": "DOUBLE", "principal": true}
          ]
        }
      ]
    }
  ]
}`

func writeSampleCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(sampleCatalogJSON), 0o644); err != nil {
		t.Fatalf("failed to write sample catalog: %v", err)
	}
	return path
}

func TestRunParseRendersValidQuery(t *testing.T) {
	if err := runParse(&parseFlags{query: "SELECT TOP 5 obs_id FROM ivoa.ObsCore"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunParseRejectsMalformedQuery(t *testing.T) {
	if err := runParse(&parseFlags{query: "SELECT FROM"}); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestRunCheckAcceptsValidQuery(t *testing.T) {
	catalogPath := writeSampleCatalog(t)
	err := runCheck(&checkFlags{query: "SELECT obs_id, s_ra FROM ivoa.ObsCore", catalogFile: catalogPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCheckRejectsUnresolvedColumn(t *testing.T) {
	catalogPath := writeSampleCatalog(t)
	err := runCheck(&checkFlags{query: "SELECT nonexistent_col FROM ivoa.ObsCore", catalogFile: catalogPath})
	if err == nil {
		t.Fatalf("expected a check error for an unresolved column")
	}
}

func TestRunTranslateProducesPostgresSQL(t *testing.T) {
	catalogPath := writeSampleCatalog(t)
	err := runTranslate(&translateFlags{
		query:       "SELECT TOP 10 obs_id FROM ivoa.ObsCore",
		catalogFile: catalogPath,
		dialectName: "postgres",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunTranslateRejectsUnknownDialect(t *testing.T) {
	catalogPath := writeSampleCatalog(t)
	err := runTranslate(&translateFlags{
		query:       "SELECT obs_id FROM ivoa.ObsCore",
		catalogFile: catalogPath,
		dialectName: "oracle",
	})
	if err == nil {
		t.Fatalf("expected an error for an unsupported dialect")
	}
}
