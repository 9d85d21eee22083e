package compose

import (
	"fmt"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/document"
)

// aggregate folds a rollup's selected column by one of the ten
// supported aggregate names. sum/avg/count/min/max mirror the query
// engine's reducers; first/last/concat/unique/all are rollup-only.
func aggregate(name string, values []document.Value) (document.Value, error) {
	switch name {
	case "", "sum":
		acc := decimal.Zero
		for _, v := range values {
			d, ok := v.AsDecimal()
			if !ok {
				return document.Null(), fmt.Errorf("sum over non-numeric value")
			}
			acc = acc.Add(d)
		}
		return document.Dec(acc), nil
	case "avg":
		if len(values) == 0 {
			return document.Null(), nil
		}
		acc := decimal.Zero
		for _, v := range values {
			d, ok := v.AsDecimal()
			if !ok {
				return document.Null(), fmt.Errorf("avg over non-numeric value")
			}
			acc = acc.Add(d)
		}
		n, _ := acc.Div(decimal.NewFromInt(int64(len(values))))
		return document.Dec(n), nil
	case "count":
		return document.Int(int64(len(values))), nil
	case "min", "max":
		if len(values) == 0 {
			return document.Null(), nil
		}
		best := values[0]
		bd, ok := best.AsDecimal()
		if !ok {
			return document.Null(), fmt.Errorf("%s over non-numeric value", name)
		}
		for _, v := range values[1:] {
			d, ok := v.AsDecimal()
			if !ok {
				return document.Null(), fmt.Errorf("%s over non-numeric value", name)
			}
			if (name == "max" && d.Cmp(bd) > 0) || (name == "min" && d.Cmp(bd) < 0) {
				best, bd = v, d
			}
		}
		return best, nil
	case "first":
		if len(values) == 0 {
			return document.Null(), nil
		}
		return values[0], nil
	case "last":
		if len(values) == 0 {
			return document.Null(), nil
		}
		return values[len(values)-1], nil
	case "concat":
		return document.Array(values), nil
	case "unique":
		seen := map[string]bool{}
		var out []document.Value
		for _, v := range values {
			key, _ := document.SerializeTripleObject(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
		return document.Array(out), nil
	case "all":
		for _, v := range values {
			if !v.Truthy() {
				return document.Bool(false), nil
			}
		}
		return document.Bool(true), nil
	default:
		return document.Null(), fmt.Errorf("unknown rollup aggregate %q", name)
	}
}
