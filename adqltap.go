// Package adqltap provides an ADQL parser, AST, and a TAP/UWS async job
// runtime for running ADQL queries against an astronomical database.
//
// adqltap is a focused, ADQL-only SQL dialect parser. It provides Parse,
// Walk, Rewrite, and Apply functionality in the idiom of the wider family
// of Go SQL parsers it descends from.
//
// Basic usage:
//
//	q, errs := adqltap.Parse("SELECT TOP 10 ra, dec FROM ivoa.ObsCore WHERE ra > 10")
//	if len(errs) != 0 {
//	    log.Fatal(errs[0])
//	}
//	fmt.Println(adqltap.Render(q))
//
// Walking the AST:
//
//	adqltap.Inspect(q, func(node ast.Node) bool {
//	    if col, ok := node.(*ast.ColumnReference); ok {
//	        fmt.Printf("found column: %s\n", col.Name())
//	    }
//	    return true
//	})
//
// Rewriting nodes:
//
//	rewritten := adqltap.Rewrite(q, func(n ast.Node) ast.Node {
//	    return n
//	})
package adqltap

import (
	"adqltap/ast"
	"adqltap/parser"
	"adqltap/render"
	"adqltap/visitor"
)

// Parse parses a single ADQL query. The parser uses internal pooling for
// efficiency; see Repool.
func Parse(adql string) (*ast.Query, []error) {
	return parser.Parse(adql)
}

// Render renders an ADQL AST back to source text.
func Render(node ast.Node) string {
	return render.String(node)
}

// Walk traverses node's subtree depth-first, calling v.Visit for each node.
func Walk(v visitor.Visitor, node ast.Node) {
	visitor.Walk(v, node)
}

// Inspect is a convenience wrapper over Walk taking a plain function.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	visitor.Inspect(node, f)
}

// Rewrite rewrites node's subtree bottom-up, replacing any node for which f
// returns a non-nil value.
func Rewrite(node ast.Node, f visitor.ApplyFunc) ast.Node {
	return visitor.Rewrite(node, f)
}

// Apply traverses node's subtree pre-order with a mutating Cursor, letting
// fn Replace or Remove the node currently visited.
func Apply(node ast.Node, fn func(*visitor.Cursor) bool) ast.Node {
	return visitor.Apply(node, fn)
}

// Repool returns a parsed query's backing nodes to their internal
// sync.Pools. Call it only once the caller is done with q and everything
// reachable from it; using q (or any node it contains) afterwards is undefined.
func Repool(q *ast.Query) {
	ast.ReleaseAST(q)
}
