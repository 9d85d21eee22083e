package query

import (
	"fmt"
	"strings"

	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/ast"
	"github.com/ldcrun/ldc/internal/lang/parser"
)

// Term is one position of a triple pattern: an IRI literal, a bound
// variable (sourced as "?name"), or a plain literal. Matching treats all
// three as string comparison/wildcard, exactly as store.Match does.
type Term struct {
	Var string // non-empty => variable, binds/reads Var
	Val string // the literal or IRI string, used when Var == ""
}

func (t Term) IsVar() bool { return t.Var != "" }

func parseTerm(raw string) Term {
	if strings.HasPrefix(raw, "?") {
		return Term{Var: strings.TrimPrefix(raw, "?")}
	}
	if raw == "a" {
		return Term{Val: rdfType}
	}
	return Term{Val: raw}
}

// Pattern is a single triple pattern.
type Pattern struct {
	S, P, O Term
}

// Clause is one element of the pattern list: either a required Pattern
// or an Optional group (left join).
type Clause struct {
	Pattern  *Pattern
	Optional *OptionalGroup
}

type OptionalGroup struct {
	Patterns []Pattern
	Filters  []ast.Expr
}

// AggKind is one of the aggregate functions usable in a select
// projection or in groupBy mode.
type AggKind string

const (
	AggSum   AggKind = "sum"
	AggAvg   AggKind = "avg"
	AggCount AggKind = "count"
	AggMin   AggKind = "min"
	AggMax   AggKind = "max"
)

// SelectItem is one projected column: a bare variable, or an aggregate
// over a variable (optionally "*" for count).
type SelectItem struct {
	Alias string
	Var   string
	Agg   AggKind // empty => plain projection
}

type OrderKey struct {
	Var  string
	Desc bool
}

// AST is the parsed shape of an @query directive.
type AST struct {
	Patterns []Clause
	Filters  []ast.Expr
	Select   []SelectItem
	GroupBy  []string
	Having   []ast.Expr
	OrderBy  []OrderKey
	Limit    *int
}

// ParseDirective builds an AST from the JSON-object shape of an @query
// directive's value. ctx expands CURIEs appearing as bare IRI terms.
func ParseDirective(v document.Value, ctx *document.Context) (*AST, error) {
	if v.Kind != document.KindObject {
		return nil, fmt.Errorf("query: directive value must be an object")
	}
	q := &AST{}

	if pv, ok := v.Obj.Get("patterns"); ok {
		clauses, err := parsePatternList(pv, ctx)
		if err != nil {
			return nil, err
		}
		q.Patterns = clauses
	}
	if fv, ok := v.Obj.Get("filters"); ok {
		exprs, err := parseExprList(fv)
		if err != nil {
			return nil, err
		}
		q.Filters = exprs
	}
	if sv, ok := v.Obj.Get("select"); ok {
		items, err := parseSelect(sv)
		if err != nil {
			return nil, err
		}
		q.Select = items
	}
	if gv, ok := v.Obj.Get("groupBy"); ok && gv.Kind == document.KindArray {
		for _, e := range gv.Arr {
			if e.Kind == document.KindString {
				q.GroupBy = append(q.GroupBy, strings.TrimPrefix(e.S, "?"))
			}
		}
	}
	if hv, ok := v.Obj.Get("having"); ok {
		exprs, err := parseExprList(hv)
		if err != nil {
			return nil, err
		}
		q.Having = exprs
	}
	if ov, ok := v.Obj.Get("orderBy"); ok && ov.Kind == document.KindArray {
		for _, e := range ov.Arr {
			if e.Kind != document.KindString {
				continue
			}
			q.OrderBy = append(q.OrderBy, parseOrderKey(e.S))
		}
	}
	if lv, ok := v.Obj.Get("limit"); ok && lv.Kind == document.KindInt {
		n := int(lv.I)
		q.Limit = &n
	}
	return q, nil
}

func parseOrderKey(raw string) OrderKey {
	fields := strings.Fields(raw)
	switch len(fields) {
	case 1:
		return OrderKey{Var: strings.TrimPrefix(fields[0], "?")}
	case 2:
		return OrderKey{Var: strings.TrimPrefix(fields[1], "?"), Desc: strings.EqualFold(fields[0], "desc")}
	default:
		return OrderKey{}
	}
}

func parsePatternList(v document.Value, ctx *document.Context) ([]Clause, error) {
	if v.Kind != document.KindArray {
		return nil, fmt.Errorf("query: patterns must be an array")
	}
	var out []Clause
	for _, item := range v.Arr {
		if item.Kind != document.KindObject {
			return nil, fmt.Errorf("query: pattern entry must be an object")
		}
		if optVal, ok := item.Obj.Get("optional"); ok {
			group, err := parseOptionalGroup(optVal, item, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, Clause{Optional: group})
			continue
		}
		p, err := parsePattern(item, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, Clause{Pattern: p})
	}
	return out, nil
}

func parseOptionalGroup(patternsVal document.Value, container document.Value, ctx *document.Context) (*OptionalGroup, error) {
	if patternsVal.Kind != document.KindArray {
		return nil, fmt.Errorf("query: optional must be an array of triple patterns")
	}
	group := &OptionalGroup{}
	for _, pv := range patternsVal.Arr {
		p, err := parsePattern(pv, ctx)
		if err != nil {
			return nil, err
		}
		group.Patterns = append(group.Patterns, *p)
	}
	if fv, ok := container.Obj.Get("filters"); ok {
		exprs, err := parseExprList(fv)
		if err != nil {
			return nil, err
		}
		group.Filters = exprs
	}
	return group, nil
}

func parsePattern(v document.Value, ctx *document.Context) (*Pattern, error) {
	if v.Kind != document.KindObject {
		return nil, fmt.Errorf("query: triple pattern must be an object")
	}
	s, _ := v.Obj.Get("s")
	p, _ := v.Obj.Get("p")
	o, _ := v.Obj.Get("o")
	return &Pattern{
		S: termFromValue(s, ctx),
		P: termFromValue(p, ctx),
		O: termFromValue(o, ctx),
	}, nil
}

func termFromValue(v document.Value, ctx *document.Context) Term {
	if v.Kind != document.KindString {
		if s, ok := document.SerializeTripleObject(v); ok {
			return Term{Val: s}
		}
		return Term{}
	}
	t := parseTerm(v.S)
	if t.Var == "" && ctx != nil && !strings.Contains(t.Val, "://") {
		t.Val = ctx.Expand(t.Val)
	}
	return t
}

func parseExprList(v document.Value) ([]ast.Expr, error) {
	switch v.Kind {
	case document.KindString:
		e, err := parser.ParseExpr(v.S)
		if err != nil {
			return nil, err
		}
		return []ast.Expr{e}, nil
	case document.KindArray:
		var out []ast.Expr
		for _, item := range v.Arr {
			if item.Kind != document.KindString {
				continue
			}
			e, err := parser.ParseExpr(item.S)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	default:
		return nil, nil
	}
}

func parseSelect(v document.Value) ([]SelectItem, error) {
	if v.Kind != document.KindArray {
		return nil, fmt.Errorf("query: select must be an array")
	}
	var out []SelectItem
	for _, item := range v.Arr {
		switch item.Kind {
		case document.KindString:
			out = append(out, SelectItem{Alias: strings.TrimPrefix(item.S, "?"), Var: strings.TrimPrefix(item.S, "?")})
		case document.KindObject:
			aggVal, _ := item.Obj.Get("agg")
			exprVal, _ := item.Obj.Get("expr")
			agg := AggKind(aggVal.S)
			varName := strings.TrimPrefix(exprVal.S, "?")
			alias := varName
			if a, ok := item.Obj.Get("as"); ok && a.Kind == document.KindString {
				alias = a.S
			} else if alias == "" {
				alias = string(agg)
			}
			out = append(out, SelectItem{Alias: alias, Var: varName, Agg: agg})
		}
	}
	return out, nil
}
