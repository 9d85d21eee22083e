package builtins

import (
	"sort"

	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
)

// arrOf resolves the array operated on: the bound `this` for member-call
// position (arr.map(fn)), or the first argument otherwise ($map(arr, fn)).
func arrOf(this *document.Value, args []document.Value) ([]document.Value, []document.Value, error) {
	if this != nil && this.Kind == document.KindArray {
		return this.Arr, args, nil
	}
	if len(args) > 0 && args[0].Kind == document.KindArray {
		return args[0].Arr, args[1:], nil
	}
	return nil, nil, diag.New(diag.ExprErr, "", "expected an array")
}

func (r *Registry) registerArray() {
	r.add("$map", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, rest, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		fn := arg(rest, 0)
		if fn.Kind != document.KindFunction {
			return document.Value{}, diag.New(diag.ExprErr, "", "$map expects a function")
		}
		out := make([]document.Value, len(items))
		for i, v := range items {
			res, err := fn.Fn.Call([]document.Value{v, document.Int(int64(i))}, nil)
			if err != nil {
				return document.Value{}, err
			}
			out[i] = res
		}
		return document.Array(out), nil
	})

	r.add("$filter", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, rest, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		fn := arg(rest, 0)
		if fn.Kind != document.KindFunction {
			return document.Value{}, diag.New(diag.ExprErr, "", "$filter expects a function")
		}
		var out []document.Value
		for i, v := range items {
			res, err := fn.Fn.Call([]document.Value{v, document.Int(int64(i))}, nil)
			if err != nil {
				return document.Value{}, err
			}
			if res.Truthy() {
				out = append(out, v)
			}
		}
		return document.Array(out), nil
	})

	r.add("$reduce", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, rest, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		fn := arg(rest, 0)
		if fn.Kind != document.KindFunction {
			return document.Value{}, diag.New(diag.ExprErr, "", "$reduce expects a function")
		}
		acc := arg(rest, 1)
		start := 0
		if len(rest) < 2 {
			if len(items) == 0 {
				return document.Null(), nil
			}
			acc = items[0]
			start = 1
		}
		for i := start; i < len(items); i++ {
			res, err := fn.Fn.Call([]document.Value{acc, items[i], document.Int(int64(i))}, nil)
			if err != nil {
				return document.Value{}, err
			}
			acc = res
		}
		return acc, nil
	})

	r.add("$find", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, rest, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		fn := arg(rest, 0)
		if fn.Kind != document.KindFunction {
			return document.Value{}, diag.New(diag.ExprErr, "", "$find expects a function")
		}
		for i, v := range items {
			res, err := fn.Fn.Call([]document.Value{v, document.Int(int64(i))}, nil)
			if err != nil {
				return document.Value{}, err
			}
			if res.Truthy() {
				return v, nil
			}
		}
		return document.Null(), nil
	})

	r.add("$some", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, rest, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		fn := arg(rest, 0)
		if fn.Kind != document.KindFunction {
			return document.Value{}, diag.New(diag.ExprErr, "", "$some expects a function")
		}
		for i, v := range items {
			res, err := fn.Fn.Call([]document.Value{v, document.Int(int64(i))}, nil)
			if err != nil {
				return document.Value{}, err
			}
			if res.Truthy() {
				return document.Bool(true), nil
			}
		}
		return document.Bool(false), nil
	})

	r.add("$every", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, rest, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		fn := arg(rest, 0)
		if fn.Kind != document.KindFunction {
			return document.Value{}, diag.New(diag.ExprErr, "", "$every expects a function")
		}
		for i, v := range items {
			res, err := fn.Fn.Call([]document.Value{v, document.Int(int64(i))}, nil)
			if err != nil {
				return document.Value{}, err
			}
			if !res.Truthy() {
				return document.Bool(false), nil
			}
		}
		return document.Bool(true), nil
	})

	r.add("$first", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, _, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		if len(items) == 0 {
			return document.Null(), nil
		}
		return items[0], nil
	})

	r.add("$last", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, _, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		if len(items) == 0 {
			return document.Null(), nil
		}
		return items[len(items)-1], nil
	})

	r.add("$count", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, _, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		return document.Int(int64(len(items))), nil
	})

	r.add("$flatten", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, _, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		var out []document.Value
		for _, v := range items {
			if v.Kind == document.KindArray {
				out = append(out, v.Arr...)
			} else {
				out = append(out, v)
			}
		}
		return document.Array(out), nil
	})

	r.add("$unique", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, _, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		var out []document.Value
		for _, v := range items {
			dup := false
			for _, o := range out {
				if sameValue(v, o) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, v)
			}
		}
		return document.Array(out), nil
	})

	r.add("$sort", func(args []document.Value, this *document.Value) (document.Value, error) {
		items, rest, err := arrOf(this, args)
		if err != nil {
			return document.Value{}, err
		}
		out := make([]document.Value, len(items))
		copy(out, items)
		var fn document.Value
		if len(rest) > 0 {
			fn = rest[0]
		}
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			if fn.Kind == document.KindFunction {
				res, err := fn.Fn.Call([]document.Value{out[i], out[j]}, nil)
				if err != nil {
					sortErr = err
					return false
				}
				d, _ := res.AsDecimal()
				return d.Sign() < 0
			}
			return defaultLess(out[i], out[j])
		})
		if sortErr != nil {
			return document.Value{}, sortErr
		}
		return document.Array(out), nil
	})
}

// sameValue is a scalar-oriented equality check for $unique; it does not
// attempt deep array/object comparison since rollup sources are scalar
// in practice.
func sameValue(a, b document.Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		ad, _ := a.AsDecimal()
		bd, _ := b.AsDecimal()
		return ad.Equal(bd)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case document.KindString:
		return a.S == b.S
	case document.KindBool:
		return a.B == b.B
	case document.KindNull:
		return true
	default:
		s1, ok1 := document.SerializeTripleObject(a)
		s2, ok2 := document.SerializeTripleObject(b)
		return ok1 && ok2 && s1 == s2
	}
}

func defaultLess(a, b document.Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		ad, _ := a.AsDecimal()
		bd, _ := b.AsDecimal()
		return ad.Cmp(bd) < 0
	}
	if a.Kind == document.KindString && b.Kind == document.KindString {
		return a.S < b.S
	}
	return false
}
