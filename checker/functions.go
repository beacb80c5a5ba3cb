package checker

import (
	"strings"

	"adqltap/catalog"
	"adqltap/errs"
)

// FunctionDef describes one callable scalar or aggregate function: its
// name, accepted arities, and result type. ImplRef, when set, names the
// dialect-specific implementation a user-defined function maps onto;
// built-in ADQL functions leave it empty since every dialect.Dialect is
// expected to know them natively.
type FunctionDef struct {
	Name       string
	Arities    []int // -1 anywhere in the slice means "any arity >= 0"
	ReturnType catalog.ColumnType
	ImplRef    string
}

func (f *FunctionDef) acceptsArity(n int) bool {
	for _, a := range f.Arities {
		if a == -1 || a == n {
			return true
		}
	}
	return false
}

// FunctionRegistry is the checker's allow-list of callable functions:
// ADQL's mandated math/string/aggregate set plus any dialect- or
// service-specific user-defined functions registered via Register.
type FunctionRegistry struct {
	byName map[string]*FunctionDef
}

// DefaultFunctions returns a FunctionRegistry preloaded with the ADQL
// standard function set (TAP-REC §2.4 math/trig/string functions) and the
// SQL aggregate functions TAP queries commonly rely on.
func DefaultFunctions() *FunctionRegistry {
	r := &FunctionRegistry{byName: make(map[string]*FunctionDef)}
	for _, def := range standardFunctions {
		r.Register(def)
	}
	return r
}

// Register adds or replaces a function definition, keyed case-insensitively
// to match ADQL's case-insensitive unquoted identifiers.
func (r *FunctionRegistry) Register(def *FunctionDef) {
	r.byName[strings.ToUpper(def.Name)] = def
}

// Lookup resolves name/arity against the registry, raising UnknownFunction
// when the name isn't registered at all and ArityMismatch when it is
// registered but not for argCount arguments.
func (r *FunctionRegistry) Lookup(name string, argCount int) (*FunctionDef, error) {
	def, ok := r.byName[strings.ToUpper(name)]
	if !ok {
		return nil, errs.New(errs.UnknownFunction, "function %q is not defined", name)
	}
	if !def.acceptsArity(argCount) {
		return nil, errs.New(errs.ArityMismatch, "function %q does not accept %d argument(s)", name, argCount)
	}
	return def, nil
}

var standardFunctions = []*FunctionDef{
	{Name: "ABS", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "CEILING", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "FLOOR", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "ROUND", Arities: []int{1, 2}, ReturnType: catalog.TypeDouble},
	{Name: "TRUNCATE", Arities: []int{1, 2}, ReturnType: catalog.TypeDouble},
	{Name: "MOD", Arities: []int{2}, ReturnType: catalog.TypeDouble},
	{Name: "POWER", Arities: []int{2}, ReturnType: catalog.TypeDouble},
	{Name: "SQRT", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "EXP", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "LOG", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "LOG10", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "PI", Arities: []int{0}, ReturnType: catalog.TypeDouble},
	{Name: "RAND", Arities: []int{0, 1}, ReturnType: catalog.TypeDouble},
	{Name: "SIN", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "COS", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "TAN", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "ASIN", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "ACOS", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "ATAN", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "ATAN2", Arities: []int{2}, ReturnType: catalog.TypeDouble},
	{Name: "DEGREES", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "RADIANS", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "SQUARE", Arities: []int{1}, ReturnType: catalog.TypeDouble},

	{Name: "LOWER", Arities: []int{1}, ReturnType: catalog.TypeVarchar},
	{Name: "UPPER", Arities: []int{1}, ReturnType: catalog.TypeVarchar},
	{Name: "SUBSTRING", Arities: []int{2, 3}, ReturnType: catalog.TypeVarchar},
	{Name: "TRIM", Arities: []int{1}, ReturnType: catalog.TypeVarchar},
	{Name: "LTRIM", Arities: []int{1}, ReturnType: catalog.TypeVarchar},
	{Name: "RTRIM", Arities: []int{1}, ReturnType: catalog.TypeVarchar},
	{Name: "COALESCE", Arities: []int{-1}, ReturnType: catalog.TypeUnknown},

	{Name: "COUNT", Arities: []int{0, 1}, ReturnType: catalog.TypeBigInt},
	{Name: "SUM", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "AVG", Arities: []int{1}, ReturnType: catalog.TypeDouble},
	{Name: "MIN", Arities: []int{1}, ReturnType: catalog.TypeUnknown},
	{Name: "MAX", Arities: []int{1}, ReturnType: catalog.TypeUnknown},

	{Name: "NOW", Arities: []int{0}, ReturnType: catalog.TypeTimestamp},
	{Name: "EXTRACT", Arities: []int{1}, ReturnType: catalog.TypeInteger},
	{Name: "DATE_ADD", Arities: []int{2}, ReturnType: catalog.TypeTimestamp},

	{Name: "IN_UNIT", Arities: []int{2}, ReturnType: catalog.TypeDouble},
	{Name: "GEOM_TO_STRING", Arities: []int{1}, ReturnType: catalog.TypeVarchar},
}
