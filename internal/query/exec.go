package query

import (
	"sort"
	"strconv"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/ast"
	"github.com/ldcrun/ldc/internal/lang/interp"
	"github.com/ldcrun/ldc/internal/store"
)

// Row is one variable binding produced by pattern matching.
type Row map[string]document.Value

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Execute runs the pipeline: patterns -> filters -> groupBy/aggregate
// -> having -> orderBy -> limit.
func Execute(q *AST, st *store.Store, it *interp.Interpreter) ([]Row, error) {
	rows := []Row{{}}
	for _, clause := range q.Patterns {
		switch {
		case clause.Pattern != nil:
			rows = extendRows(rows, *clause.Pattern, st)
		case clause.Optional != nil:
			var err error
			rows, err = leftJoin(rows, *clause.Optional, st, it)
			if err != nil {
				return nil, err
			}
		}
	}

	var err error
	rows, err = filterRows(rows, q.Filters, it)
	if err != nil {
		return nil, err
	}

	hasAgg := false
	for _, s := range q.Select {
		if s.Agg != "" {
			hasAgg = true
		}
	}

	var out []Row
	switch {
	case len(q.GroupBy) > 0:
		out, err = groupAndAggregate(rows, q)
	case hasAgg:
		row, aerr := aggregateSingle(rows, q.Select)
		if aerr != nil {
			return nil, aerr
		}
		out = []Row{row}
	default:
		out = projectPlain(rows, q.Select)
	}
	if err != nil {
		return nil, err
	}

	out, err = filterRows(out, q.Having, it)
	if err != nil {
		return nil, err
	}

	out = applyOrderBy(out, q.OrderBy)

	if q.Limit != nil && len(out) > *q.Limit {
		out = out[:*q.Limit]
	}
	return out, nil
}

func extendRows(rows []Row, p Pattern, st *store.Store) []Row {
	var out []Row
	for _, row := range rows {
		sPtr := groundTerm(row, p.S)
		pPtr := groundTerm(row, p.P)
		oPtr := groundTerm(row, p.O)
		for _, t := range st.Match(sPtr, pPtr, oPtr) {
			next := row.clone()
			ok := bindTerm(next, p.S, document.Str(t.S)) &&
				bindTerm(next, p.P, document.Str(t.P)) &&
				bindTerm(next, p.O, parseTripleObject(t.O))
			if ok {
				out = append(out, next)
			}
		}
	}
	return out
}

func leftJoin(rows []Row, group OptionalGroup, st *store.Store, it *interp.Interpreter) ([]Row, error) {
	var out []Row
	for _, row := range rows {
		sub := []Row{row}
		for _, p := range group.Patterns {
			sub = extendRows(sub, p, st)
		}
		sub, err := filterRows(sub, group.Filters, it)
		if err != nil {
			return nil, err
		}
		if len(sub) == 0 {
			withNulls := row.clone()
			for _, p := range group.Patterns {
				for _, t := range []Term{p.S, p.P, p.O} {
					if t.IsVar() {
						if _, ok := withNulls[t.Var]; !ok {
							withNulls[t.Var] = document.Null()
						}
					}
				}
			}
			out = append(out, withNulls)
			continue
		}
		out = append(out, sub...)
	}
	return out, nil
}

func groundTerm(row Row, t Term) *string {
	if !t.IsVar() {
		v := t.Val
		return &v
	}
	if val, ok := row[t.Var]; ok {
		s, ok := document.SerializeTripleObject(val)
		if !ok {
			return nil
		}
		return &s
	}
	return nil
}

func bindTerm(row Row, t Term, val document.Value) bool {
	if !t.IsVar() {
		return true
	}
	if existing, ok := row[t.Var]; ok {
		s1, _ := document.SerializeTripleObject(existing)
		s2, _ := document.SerializeTripleObject(val)
		return s1 == s2
	}
	row[t.Var] = val
	row["?"+t.Var] = val
	return true
}

func filterRows(rows []Row, exprs []ast.Expr, it *interp.Interpreter) ([]Row, error) {
	if len(exprs) == 0 {
		return rows, nil
	}
	var out []Row
	for _, row := range rows {
		scope := interp.NewScope(nil)
		for k, v := range row {
			scope.Set(k, v)
		}
		keep := true
		for _, e := range exprs {
			v, err := it.Eval(e, scope, nil)
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

func projectPlain(rows []Row, sel []SelectItem) []Row {
	if len(sel) == 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		projected := Row{}
		for _, s := range sel {
			if v, ok := row[s.Var]; ok {
				projected[s.Alias] = v
			}
		}
		out = append(out, projected)
	}
	return out
}

func aggregateSingle(rows []Row, sel []SelectItem) (Row, error) {
	out := Row{}
	for _, s := range sel {
		if s.Agg == "" {
			if len(rows) > 0 {
				out[s.Alias] = rows[0][s.Var]
			}
			continue
		}
		reducer, ok := reducerFor(s.Agg)
		if !ok {
			return nil, QueryError{Kind: "aggregate", Message: "unknown aggregate " + string(s.Agg)}
		}
		col := column(rows, s.Var)
		v, err := reducer.Reduce(col)
		if err != nil {
			return nil, err
		}
		out[s.Alias] = v
	}
	return out, nil
}

func groupAndAggregate(rows []Row, q *AST) ([]Row, error) {
	type group struct {
		key  string
		rows []Row
	}
	order := []string{}
	groups := map[string]*group{}
	for _, row := range rows {
		key := groupKey(row, q.GroupBy)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}

	var out []Row
	for _, key := range order {
		g := groups[key]
		result := Row{}
		for _, gb := range q.GroupBy {
			if len(g.rows) > 0 {
				result[gb] = g.rows[0][gb]
			}
		}
		for _, s := range q.Select {
			if s.Agg == "" {
				if len(g.rows) > 0 {
					result[s.Alias] = g.rows[0][s.Var]
				}
				continue
			}
			reducer, ok := reducerFor(s.Agg)
			if !ok {
				return nil, QueryError{Kind: "aggregate", Message: "unknown aggregate " + string(s.Agg)}
			}
			v, err := reducer.Reduce(column(g.rows, s.Var))
			if err != nil {
				return nil, err
			}
			result[s.Alias] = v
		}
		out = append(out, result)
	}
	return out, nil
}

func groupKey(row Row, vars []string) string {
	key := ""
	for _, v := range vars {
		s, _ := document.SerializeTripleObject(row[v])
		key += v + "=" + s + "\x1f"
	}
	return key
}

func column(rows []Row, v string) []document.Value {
	out := make([]document.Value, 0, len(rows))
	for _, row := range rows {
		if v == "*" {
			// "*" contributes one value per row, so count(*) counts rows.
			out = append(out, document.Int(1))
			continue
		}
		if val, ok := row[v]; ok {
			out = append(out, val)
		}
	}
	return out
}

func applyOrderBy(rows []Row, keys []OrderKey) []Row {
	if len(keys) == 0 {
		return rows
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		sort.SliceStable(out, func(a, b int) bool {
			less := lessValue(out[a][k.Var], out[b][k.Var])
			if k.Desc {
				return lessValue(out[b][k.Var], out[a][k.Var])
			}
			return less
		})
	}
	return out
}

func lessValue(a, b document.Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		ad, _ := a.AsDecimal()
		bd, _ := b.AsDecimal()
		return ad.Cmp(bd) < 0
	}
	sa, _ := document.SerializeTripleObject(a)
	sb, _ := document.SerializeTripleObject(b)
	return sa < sb
}

// parseTripleObject reverses document.SerializeTripleObject for the
// common scalar cases, so filters and aggregates see typed values
// instead of raw triple-object strings.
func parseTripleObject(s string) document.Value {
	switch s {
	case "true":
		return document.Bool(true)
	case "false":
		return document.Bool(false)
	case "null":
		return document.Null()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return document.Int(n)
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return document.Dec(d)
	}
	return document.Str(s)
}
