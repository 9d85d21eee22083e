package builtins

import (
	"strconv"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
)

func (r *Registry) registerFormat() {
	r.add("$toString", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := document.SerializeTripleObject(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$toString expects a scalar value")
		}
		return document.Str(s), nil
	})
	r.add("$toNumber", func(args []document.Value, _ *document.Value) (document.Value, error) {
		v := arg(args, 0)
		if v.IsNumeric() {
			return v, nil
		}
		s, ok := str(v)
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$toNumber expects a string or number")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return document.Value{}, diag.New(diag.ExprErr, "", "cannot parse %q as a number", s)
		}
		return document.Dec(d), nil
	})
	r.add("$toFixed", func(args []document.Value, _ *document.Value) (document.Value, error) {
		d, ok := arg(args, 0).AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$toFixed expects a number")
		}
		places := int32(2)
		if p := arg(args, 1); p.Kind == document.KindInt {
			places = int32(p.I)
		}
		return document.Str(d.Round(places).StringFixed(places)), nil
	})
	r.add("$parseInt", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$parseInt expects a string")
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return document.Value{}, diag.New(diag.ExprErr, "", "cannot parse %q as an integer", s)
		}
		return document.Int(n), nil
	})
	r.add("$parseFloat", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$parseFloat expects a string")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return document.Value{}, diag.New(diag.ExprErr, "", "cannot parse %q as a decimal", s)
		}
		return document.Dec(d), nil
	})
}
