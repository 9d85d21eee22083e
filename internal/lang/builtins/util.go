package builtins

import "github.com/ldcrun/ldc/internal/document"

func (r *Registry) registerUtil() {
	r.add("$typeof", func(args []document.Value, _ *document.Value) (document.Value, error) {
		return document.Str(arg(args, 0).Kind.String()), nil
	})
	r.add("$isNull", func(args []document.Value, _ *document.Value) (document.Value, error) {
		return document.Bool(arg(args, 0).IsNull()), nil
	})
	r.add("$coalesce", func(args []document.Value, _ *document.Value) (document.Value, error) {
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return document.Null(), nil
	})
	r.add("$default", func(args []document.Value, _ *document.Value) (document.Value, error) {
		v := arg(args, 0)
		if !v.IsNull() {
			return v, nil
		}
		return arg(args, 1), nil
	})
	r.add("$if", func(args []document.Value, _ *document.Value) (document.Value, error) {
		if arg(args, 0).Truthy() {
			return arg(args, 1), nil
		}
		return arg(args, 2), nil
	})
}
