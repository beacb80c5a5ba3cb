package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// columnDoc/tableDoc/schemaDoc/catalogDoc mirror Column/Table/Schema/
// Catalog but with JSON tags, for loading a catalog definition from disk
// at service startup (spec §3.1's metadata is fed in, not queried live).
type columnDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Unit        string `json:"unit,omitempty"`
	UCD         string `json:"ucd,omitempty"`
	Description string `json:"description,omitempty"`
	Indexed     bool   `json:"indexed,omitempty"`
	Principal   bool   `json:"principal,omitempty"`
}

type tableDoc struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Columns     []columnDoc `json:"columns"`
}

type schemaDoc struct {
	Name   string     `json:"name"`
	Tables []tableDoc `json:"tables"`
}

type catalogDoc struct {
	Schemas []schemaDoc `json:"schemas"`
}

var typeNames = map[string]ColumnType{
	"UNKNOWN_NUMERIC": TypeUnknownNumeric,
	"SMALLINT":        TypeSmallInt,
	"INTEGER":         TypeInteger,
	"BIGINT":          TypeBigInt,
	"REAL":            TypeReal,
	"DOUBLE":          TypeDouble,
	"CHAR":            TypeChar,
	"VARCHAR":         TypeVarchar,
	"BOOLEAN":         TypeBoolean,
	"TIMESTAMP":       TypeTimestamp,
	"BINARY":          TypeBinary,
	"VARBINARY":       TypeVarbinary,
	"BLOB":            TypeBlob,
	"CLOB":            TypeClob,
	"POINT":           TypePoint,
	"CIRCLE":          TypeCircle,
	"REGION":          TypeRegion,
}

// LoadJSON reads a catalog definition from path and builds a Catalog from
// it. Unrecognized column type names become TypeUnknown rather than a
// load error, since a catalog author may reference a dialect-specific
// type this package doesn't model yet.
func LoadJSON(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	var doc catalogDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	cat := New()
	for _, sd := range doc.Schemas {
		schema := &Schema{Name: sd.Name}
		for _, td := range sd.Tables {
			table := &Table{Name: td.Name, Description: td.Description}
			for _, cd := range td.Columns {
				table.Columns = append(table.Columns, &Column{
					Name:        cd.Name,
					Type:        typeNames[cd.Type],
					Unit:        cd.Unit,
					UCD:         cd.UCD,
					Description: cd.Description,
					Indexed:     cd.Indexed,
					Principal:   cd.Principal,
				})
			}
			schema.Tables = append(schema.Tables, table)
		}
		cat.AddSchema(schema)
	}
	return cat, nil
}
