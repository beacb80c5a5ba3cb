// Package ansi implements dialect.Dialect for a generic SQL-92 backend
// with no geometry extension, demonstrating the UnsupportedByDialect path
// a dialect takes when it has no native geometry support.
package ansi

import (
	"strconv"
	"strings"

	"adqltap/ast"
	"adqltap/errs"
)

// Dialect is the SQL-92 fallback dialect. It accepts a map of geometry
// functions an operator has registered an impl_ref for; anything not in
// that map is rejected.
type Dialect struct {
	GeometryImplRefs map[ast.GeometryName]string
}

// New returns an ansi Dialect with no geometry support registered.
func New() *Dialect {
	return &Dialect{GeometryImplRefs: make(map[ast.GeometryName]string)}
}

func (d *Dialect) Name() string { return "ansi" }

func (d *Dialect) QuoteIdentifier(part string) string {
	return `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
}

func (d *Dialect) FoldIdentifier(part string) string {
	return strings.ToLower(part)
}

func (d *Dialect) LimitOffset(limit, offset *int) string {
	var sb strings.Builder
	if offset != nil {
		sb.WriteString("OFFSET ")
		sb.WriteString(strconv.Itoa(*offset))
		sb.WriteString(" ROWS")
	}
	if limit != nil {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("FETCH FIRST ")
		sb.WriteString(strconv.Itoa(*limit))
		sb.WriteString(" ROWS ONLY")
	}
	return sb.String()
}

func (d *Dialect) GeometryCall(name ast.GeometryName, args []string) (string, error) {
	implRef, ok := d.GeometryImplRefs[name]
	if !ok {
		return "", errs.New(errs.UnsupportedByDialect,
			"ansi dialect has no geometry extension; %s has no registered impl_ref", name)
	}
	return implRef + "(" + strings.Join(args, ", ") + ")", nil
}
