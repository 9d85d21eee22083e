// Package indexer walks a document in a single pass, classifying every
// non-"@" property as either an inert value (seeded directly as
// triples) or a computation directive (built into a DAG node for the
// scheduler).
package indexer

import (
	"strconv"

	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/ast"
	"github.com/ldcrun/ldc/internal/lang/parser"
	"github.com/ldcrun/ldc/internal/query"
	"github.com/ldcrun/ldc/internal/store"
)

type DirectiveKind int

const (
	KindExpr DirectiveKind = iota
	KindView
	KindConstraint
	KindQuery
)

// Write names a dependency target both ways: by the plain key an
// expression would reference it by, and by its expanded IRI — the
// scheduler matches either form.
type Write struct {
	PlainKey string
	IRI      string
}

// Node is one computed property awaiting scheduling.
type Node struct {
	ID       string
	PlainKey string
	Kind     DirectiveKind
	Reads    []string
	Writes   []Write
	Expr     ast.Expr
	Query    *query.AST
	Stable   bool
}

// Result is the indexer's output: the DAG nodes to schedule and the
// triples seeded directly from inert values.
type Result struct {
	Nodes       []*Node
	Seeds       []store.Triple
	Diagnostics []diag.Diagnostic
}

var reservedKeys = map[string]bool{
	"@id": true, "@context": true, "@type": true,
	"@relations": true, "@stable": true,
}

// Index walks doc (already @ref/@rollup-resolved by the Composer) and
// builds the DAG node list plus inert-value seed triples. subjectIRI is
// the document's expanded @id.
func Index(doc document.Value, ctx *document.Context, subjectIRI string) (*Result, error) {
	if doc.Kind != document.KindObject {
		return nil, diag.New(diag.SchemaError, "", "document must be an object")
	}
	res := &Result{}
	for _, key := range doc.Obj.Keys() {
		if reservedKeys[key] || isDirectiveKeyName(key) {
			continue
		}
		v, _ := doc.Obj.Get(key)
		indexProperty(res, ctx, subjectIRI, subjectIRI, key, v, true)
	}
	return res, nil
}

// isDirectiveKeyName guards against indexing the directive keys
// themselves if they ever appear as siblings at the root (they should
// only appear nested inside a property's own directive object).
func isDirectiveKeyName(key string) bool {
	switch key {
	case "@expr", "@view", "@constraint", "@query", "@ref", "@rollup":
		return true
	default:
		return false
	}
}

func indexProperty(res *Result, ctx *document.Context, rootSubject, subject, key string, v document.Value, isRootScalarSite bool) {
	if dk, inner, ok := directiveOf(v); ok {
		node, err := buildNode(ctx, rootSubject, subject, key, dk, inner)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, err.(diag.EvalError).Diagnostic())
			return
		}
		if warn := ambiguityWarning(rootSubject, key, v); warn != nil {
			res.Diagnostics = append(res.Diagnostics, *warn)
		}
		res.Nodes = append(res.Nodes, node)
		return
	}

	switch v.Kind {
	case document.KindObject:
		synthetic := subject + "/" + key
		for _, k2 := range v.Obj.Keys() {
			v2, _ := v.Obj.Get(k2)
			indexProperty(res, ctx, rootSubject, synthetic, k2, v2, false)
		}
	case document.KindArray:
		for i, elem := range v.Arr {
			if elem.Kind != document.KindObject {
				continue
			}
			synthetic := subject + "/" + key + "/" + strconv.Itoa(i)
			for _, k2 := range elem.Obj.Keys() {
				v2, _ := elem.Obj.Get(k2)
				indexProperty(res, ctx, rootSubject, synthetic, k2, v2, false)
			}
		}
	default:
		if isRootScalarSite {
			return
		}
		if s, ok := document.SerializeTripleObject(v); ok {
			res.Seeds = append(res.Seeds, store.Triple{S: subject, P: ctx.Expand(key), O: s})
		}
	}
}

// directiveOf reports whether v is a directive object and, if so, which
// kind and the expression-bearing inner value to parse.
func directiveOf(v document.Value) (DirectiveKind, document.Value, bool) {
	if v.Kind != document.KindObject {
		return 0, document.Value{}, false
	}
	if inner, ok := v.Obj.Get("@expr"); ok {
		return KindExpr, inner, true
	}
	if inner, ok := v.Obj.Get("@view"); ok {
		return KindView, inner, true
	}
	if inner, ok := v.Obj.Get("@constraint"); ok {
		return KindConstraint, inner, true
	}
	if inner, ok := v.Obj.Get("@query"); ok {
		return KindQuery, inner, true
	}
	return 0, document.Value{}, false
}

// ambiguityWarning handles a property carrying more than one directive
// key: the first of @expr/@view/@constraint/@query wins, and every
// other directive key present is reported as a non-fatal warning
// rather than silently dropped.
func ambiguityWarning(rootSubject, key string, v document.Value) *diag.Diagnostic {
	if v.Kind != document.KindObject {
		return nil
	}
	names := []string{"@expr", "@view", "@constraint", "@query"}
	var present []string
	for _, n := range names {
		if v.Obj.Has(n) {
			present = append(present, n)
		}
	}
	if len(present) <= 1 {
		return nil
	}
	w := diag.New(diag.SchemaError, rootSubject+"/"+key, "ambiguous directive: using %s, ignoring %v", present[0], present[1:]).Warning()
	return &w
}

func buildNode(ctx *document.Context, rootSubject, subject, key string, dk DirectiveKind, inner document.Value) (*Node, error) {
	iri := ctx.Expand(key)
	node := &Node{ID: iri, PlainKey: key, Kind: dk}

	switch dk {
	case KindExpr, KindConstraint:
		src, ok := inner.S, inner.Kind == document.KindString
		if !ok {
			return nil, diag.New(diag.ExprErr, iri, "directive value must be a string expression")
		}
		e, err := parser.ParseExpr(src)
		if err != nil {
			return nil, diag.New(diag.ExprErr, iri, "parse error: %v", err)
		}
		node.Expr = e
		node.Reads = ast.FreeVars(e)
	case KindView:
		if inner.Kind != document.KindObject {
			return nil, diag.New(diag.ExprErr, iri, "@view value must be an object")
		}
		exprVal, ok := inner.Obj.Get("@expr")
		if !ok || exprVal.Kind != document.KindString {
			return nil, diag.New(diag.ExprErr, iri, "@view requires a string @expr")
		}
		e, err := parser.ParseExpr(exprVal.S)
		if err != nil {
			return nil, diag.New(diag.ExprErr, iri, "parse error: %v", err)
		}
		node.Expr = e
		node.Reads = ast.FreeVars(e)
		if stableVal, ok := inner.Obj.Get("@stable"); ok {
			node.Stable = stableVal.Truthy()
		}
	case KindQuery:
		qast, err := query.ParseDirective(inner, ctx)
		if err != nil {
			return nil, diag.New(diag.QueryErr, iri, "parse error: %v", err)
		}
		node.Query = qast
	}

	node.Writes = []Write{{PlainKey: key, IRI: iri}}
	return node, nil
}
