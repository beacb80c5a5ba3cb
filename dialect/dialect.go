// Package dialect declares the backend-parameterization seam the
// translator renders SQL through: quoting rules, row-limiting syntax, and
// the geometry-function mapping each SQL backend supports (or doesn't).
package dialect

import "adqltap/ast"

// Dialect is implemented once per SQL backend the translator targets.
// Implementations must be side-effect free: the translator calls these
// methods purely to decide what text to emit.
type Dialect interface {
	// Name identifies the dialect, for logging and error messages.
	Name() string

	// QuoteIdentifier re-quotes a case-sensitive identifier part using the
	// backend's quote character and escaping rule.
	QuoteIdentifier(part string) string

	// FoldIdentifier renders a case-insensitive identifier part: by
	// convention this is lowercased and left unquoted.
	FoldIdentifier(part string) string

	// LimitOffset renders the backend's row-limiting clause. limit and
	// offset are nil when absent; at least one is always non-nil when this
	// is called.
	LimitOffset(limit, offset *int) string

	// GeometryCall renders one geometry function/predicate call, where args
	// are the already-rendered SQL text of each argument. It returns an
	// errs.UnsupportedByDialect error when this dialect has no mapping for
	// name.
	GeometryCall(name ast.GeometryName, args []string) (string, error)
}
