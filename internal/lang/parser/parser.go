package parser

import "github.com/ldcrun/ldc/internal/lang/ast"

// ParseExpr parses src and lowers it directly to an ast.Expr, the form
// every other package (interp, indexer) consumes.
func ParseExpr(src string) (ast.Expr, error) {
	raw, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Convert(raw)
}
