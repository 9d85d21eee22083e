package builtins

import (
	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
)

func (r *Registry) registerMath() {
	r.add("$abs", func(args []document.Value, _ *document.Value) (document.Value, error) {
		v := arg(args, 0)
		if v.Kind == document.KindInt {
			if v.I < 0 {
				return document.Int(-v.I), nil
			}
			return v, nil
		}
		d, ok := v.AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$abs expects a number")
		}
		return document.Dec(d.Abs()), nil
	})

	r.add("$round", func(args []document.Value, _ *document.Value) (document.Value, error) {
		d, ok := arg(args, 0).AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$round expects a number")
		}
		places := int32(0)
		if p := arg(args, 1); p.Kind == document.KindInt {
			places = int32(p.I)
		}
		return document.Dec(d.Round(places)), nil
	})

	r.add("$floor", func(args []document.Value, _ *document.Value) (document.Value, error) {
		d, ok := arg(args, 0).AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$floor expects a number")
		}
		t := d.Truncate(0)
		if d.Sign() < 0 && !d.Equal(t) {
			t = t.Sub(decimal.NewFromInt(1))
		}
		return document.Dec(t), nil
	})

	r.add("$ceil", func(args []document.Value, _ *document.Value) (document.Value, error) {
		d, ok := arg(args, 0).AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$ceil expects a number")
		}
		t := d.Truncate(0)
		if d.Sign() > 0 && !d.Equal(t) {
			t = t.Add(decimal.NewFromInt(1))
		}
		return document.Dec(t), nil
	})

	r.add("$trunc", func(args []document.Value, _ *document.Value) (document.Value, error) {
		d, ok := arg(args, 0).AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$trunc expects a number")
		}
		places := int32(0)
		if p := arg(args, 1); p.Kind == document.KindInt {
			places = int32(p.I)
		}
		return document.Dec(d.Truncate(places)), nil
	})

	r.add("$pow", func(args []document.Value, _ *document.Value) (document.Value, error) {
		base, ok1 := arg(args, 0).AsDecimal()
		exp, ok2 := arg(args, 1).AsDecimal()
		if !ok1 || !ok2 {
			return document.Value{}, diag.New(diag.ExprErr, "", "$pow expects two numbers")
		}
		return document.Dec(base.Pow(exp)), nil
	})

	r.add("$sqrt", func(args []document.Value, _ *document.Value) (document.Value, error) {
		d, ok := arg(args, 0).AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$sqrt expects a number")
		}
		if d.Sign() < 0 {
			return document.Value{}, diag.New(diag.ExprErr, "", "$sqrt of negative number")
		}
		half, _ := decimal.NewFromString("0.5")
		return document.Dec(d.Pow(half)), nil
	})

	r.add("$min", func(args []document.Value, _ *document.Value) (document.Value, error) {
		return extremum(args, false)
	})
	r.add("$max", func(args []document.Value, _ *document.Value) (document.Value, error) {
		return extremum(args, true)
	})
	r.add("$sum", func(args []document.Value, _ *document.Value) (document.Value, error) {
		vals, err := flattenNumeric(args)
		if err != nil {
			return document.Value{}, err
		}
		acc := decimal.Zero
		for _, d := range vals {
			acc = acc.Add(d)
		}
		return document.Dec(acc), nil
	})
	r.add("$avg", func(args []document.Value, _ *document.Value) (document.Value, error) {
		vals, err := flattenNumeric(args)
		if err != nil {
			return document.Value{}, err
		}
		if len(vals) == 0 {
			return document.Null(), nil
		}
		acc := decimal.Zero
		for _, d := range vals {
			acc = acc.Add(d)
		}
		n, _ := acc.Div(decimal.NewFromInt(int64(len(vals))))
		return document.Dec(n), nil
	})
}

// flattenNumeric accepts either a list of numeric arguments or a single
// array argument, the calling convention $sum/$avg use over a rollup's
// source array.
func flattenNumeric(args []document.Value) ([]decimal.Decimal, error) {
	var items []document.Value
	if len(args) == 1 && args[0].Kind == document.KindArray {
		items = args[0].Arr
	} else {
		items = args
	}
	out := make([]decimal.Decimal, 0, len(items))
	for _, v := range items {
		d, ok := v.AsDecimal()
		if !ok {
			return nil, diag.New(diag.ExprErr, "", "expected numeric value in aggregate")
		}
		out = append(out, d)
	}
	return out, nil
}

func extremum(args []document.Value, wantMax bool) (document.Value, error) {
	vals, err := flattenNumeric(args)
	if err != nil {
		return document.Value{}, err
	}
	if len(vals) == 0 {
		return document.Null(), nil
	}
	best := vals[0]
	for _, d := range vals[1:] {
		if (wantMax && d.Cmp(best) > 0) || (!wantMax && d.Cmp(best) < 0) {
			best = d
		}
	}
	return document.Dec(best), nil
}
