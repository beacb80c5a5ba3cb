// Package postgres implements dialect.Dialect for PostgreSQL with the
// pgSphere extension providing geometry support, matching spec.md's
// Scenario A translation target.
package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"adqltap/ast"
	"adqltap/errs"
)

// Dialect is the pgSphere-backed PostgreSQL dialect.
type Dialect struct{}

// New returns a ready-to-use postgres Dialect.
func New() *Dialect { return &Dialect{} }

func (d *Dialect) Name() string { return "postgres" }

func (d *Dialect) QuoteIdentifier(part string) string {
	return `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
}

func (d *Dialect) FoldIdentifier(part string) string {
	return strings.ToLower(part)
}

func (d *Dialect) LimitOffset(limit, offset *int) string {
	var sb strings.Builder
	if limit != nil {
		sb.WriteString("LIMIT ")
		sb.WriteString(strconv.Itoa(*limit))
	}
	if offset != nil {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("OFFSET ")
		sb.WriteString(strconv.Itoa(*offset))
	}
	return sb.String()
}

// geometryFuncs maps the fixed-arity geometry constructors to a pgSphere
// constructor template; each %s is one rendered argument, in ADQL argument
// order, substituted exactly once.
var geometryFuncs = map[ast.GeometryName]string{
	ast.GeomPoint:    "spoint(radians(%s), radians(%s))",
	ast.GeomCircle:   "scircle(spoint(radians(%s), radians(%s)), radians(%s))",
	ast.GeomCentroid: "scircle_center(%s)",
	ast.GeomDistance: "spoint_dist(%s, %s)",
	ast.GeomCoord1:   "degrees(long(%s))",
	ast.GeomCoord2:   "degrees(lat(%s))",
}

func (d *Dialect) GeometryCall(name ast.GeometryName, args []string) (string, error) {
	switch name {
	case ast.GeomContains:
		if len(args) != 2 {
			return "", errs.New(errs.ArityMismatch, "CONTAINS expects 2 arguments, got %d", len(args))
		}
		return fmt.Sprintf("(%s @> %s)::integer", args[1], args[0]), nil
	case ast.GeomIntersect:
		if len(args) != 2 {
			return "", errs.New(errs.ArityMismatch, "INTERSECTS expects 2 arguments, got %d", len(args))
		}
		return fmt.Sprintf("(%s && %s)::integer", args[0], args[1]), nil
	case ast.GeomArea:
		if len(args) != 1 {
			return "", errs.New(errs.ArityMismatch, "AREA expects 1 argument, got %d", len(args))
		}
		return fmt.Sprintf("spoly_area(%s)", args[0]), nil
	case ast.GeomCoordsys:
		return "'ICRS'", nil
	case ast.GeomBox:
		if len(args) != 4 {
			return "", errs.New(errs.ArityMismatch, "BOX expects 4 arguments, got %d", len(args))
		}
		ra, dec, width, height := args[0], args[1], args[2], args[3]
		return fmt.Sprintf(
			"sbox(spoint(radians(%s - (%s)/2), radians(%s - (%s)/2)), spoint(radians(%s + (%s)/2), radians(%s + (%s)/2)))",
			ra, width, dec, height, ra, width, dec, height,
		), nil
	case ast.GeomPolygon:
		if len(args) < 3 {
			return "", errs.New(errs.ArityMismatch, "POLYGON expects at least 3 vertex coordinates, got %d", len(args))
		}
		points := make([]string, 0, len(args)/2)
		for i := 0; i+1 < len(args); i += 2 {
			points = append(points, fmt.Sprintf("spoint(radians(%s), radians(%s))", args[i], args[i+1]))
		}
		return "spoly(ARRAY[" + strings.Join(points, ", ") + "])", nil
	}
	tmpl, ok := geometryFuncs[name]
	if !ok {
		return "", errs.New(errs.UnsupportedByDialect, "postgres/pgSphere dialect has no mapping for geometry function %s", name)
	}
	generic := make([]any, len(args))
	for i, a := range args {
		generic[i] = a
	}
	return fmt.Sprintf(tmpl, generic...), nil
}
