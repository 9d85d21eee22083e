package builtins

import (
	"strings"

	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
)

func str(v document.Value) (string, bool) {
	if v.Kind == document.KindString {
		return v.S, true
	}
	return "", false
}

func (r *Registry) registerStrings() {
	r.add("$upper", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$upper expects a string")
		}
		return document.Str(strings.ToUpper(s)), nil
	})
	r.add("$lower", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$lower expects a string")
		}
		return document.Str(strings.ToLower(s)), nil
	})
	r.add("$trim", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$trim expects a string")
		}
		return document.Str(strings.TrimSpace(s)), nil
	})
	r.add("$concat", func(args []document.Value, _ *document.Value) (document.Value, error) {
		var b strings.Builder
		for _, a := range args {
			s, _ := document.SerializeTripleObject(a)
			b.WriteString(s)
		}
		return document.Str(b.String()), nil
	})
	r.add("$split", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		sep, ok2 := str(arg(args, 1))
		if !ok || !ok2 {
			return document.Value{}, diag.New(diag.ExprErr, "", "$split expects two strings")
		}
		parts := strings.Split(s, sep)
		out := make([]document.Value, len(parts))
		for i, p := range parts {
			out[i] = document.Str(p)
		}
		return document.Array(out), nil
	})
	r.add("$join", func(args []document.Value, _ *document.Value) (document.Value, error) {
		arr := arg(args, 0)
		sep, _ := str(arg(args, 1))
		if arr.Kind != document.KindArray {
			return document.Value{}, diag.New(diag.ExprErr, "", "$join expects an array")
		}
		parts := make([]string, len(arr.Arr))
		for i, v := range arr.Arr {
			s, _ := document.SerializeTripleObject(v)
			parts[i] = s
		}
		return document.Str(strings.Join(parts, sep)), nil
	})
	r.add("$replace", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, _ := str(arg(args, 0))
		old, _ := str(arg(args, 1))
		new, _ := str(arg(args, 2))
		return document.Str(strings.ReplaceAll(s, old, new)), nil
	})
	r.add("$contains", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, _ := str(arg(args, 0))
		sub, _ := str(arg(args, 1))
		return document.Bool(strings.Contains(s, sub)), nil
	})
	r.add("$startsWith", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, _ := str(arg(args, 0))
		p, _ := str(arg(args, 1))
		return document.Bool(strings.HasPrefix(s, p)), nil
	})
	r.add("$endsWith", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, _ := str(arg(args, 0))
		p, _ := str(arg(args, 1))
		return document.Bool(strings.HasSuffix(s, p)), nil
	})
	r.add("$length", func(args []document.Value, _ *document.Value) (document.Value, error) {
		v := arg(args, 0)
		switch v.Kind {
		case document.KindString:
			return document.Int(int64(len([]rune(v.S)))), nil
		case document.KindArray:
			return document.Int(int64(len(v.Arr))), nil
		case document.KindObject:
			return document.Int(int64(v.Obj.Len())), nil
		default:
			return document.Value{}, diag.New(diag.ExprErr, "", "$length expects a string, array, or object")
		}
	})
	r.add("$substr", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$substr expects a string")
		}
		rs := []rune(s)
		start := int(arg(args, 1).I)
		end := len(rs)
		if a := arg(args, 2); a.Kind == document.KindInt {
			end = int(a.I)
		}
		if start < 0 {
			start = 0
		}
		if end > len(rs) {
			end = len(rs)
		}
		if start > end {
			return document.Str(""), nil
		}
		return document.Str(string(rs[start:end])), nil
	})
}
