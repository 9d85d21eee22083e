// Package query implements the triple-pattern query sublanguage:
// pattern matching against the store, optional left-joins, filters,
// GROUP BY/aggregation, ORDER BY, and LIMIT.
//
// A Query is "a thing with a Run method", and aggregation goes
// through a Reducer — one pipeline with pluggable stages, driven by
// triple bindings from the store.
package query

import (
	"github.com/ldcrun/ldc/internal/lang/interp"
	"github.com/ldcrun/ldc/internal/store"
)

// rdfType is the expansion of the reserved predicate shorthand "a".
const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Query is executed against a triple store and yields result rows.
type Query interface {
	Run(s *store.Store, it *interp.Interpreter) ([]Row, error)
}

// Run implements Query for a parsed @query directive.
func (a *AST) Run(s *store.Store, it *interp.Interpreter) ([]Row, error) {
	return Execute(a, s, it)
}
