// Package compose resolves @relations, @ref, and @rollup against named
// sibling documents before the indexer sees the document. Filter
// expressions inside @rollup reuse the same expression parser and
// interpreter as the rest of the language, rather than a bespoke regex
// grammar.
package compose

import (
	"strconv"
	"strings"

	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/interp"
	"github.com/ldcrun/ldc/internal/lang/parser"
)

// Loader fetches a named relation document. The host owns the actual
// fetch (file, HTTP, database row); the Composer only knows aliases.
type Loader func(alias, path string) (document.Value, error)

// Compose returns a working copy of doc with every @ref/@rollup
// directive replaced by its resolved, inert value. Document-local
// resolution failures are reported as diagnostics and the directive's
// property becomes null; a missing @relations entry or loader failure
// is also document-local, not a schema error.
func Compose(doc document.Value, loader Loader, it *interp.Interpreter) (document.Value, []diag.Diagnostic) {
	if doc.Kind != document.KindObject {
		return doc, nil
	}
	relations := map[string]document.Value{}
	var diags []diag.Diagnostic

	if relV, ok := doc.Obj.Get("@relations"); ok && relV.Kind == document.KindObject {
		for _, alias := range relV.Obj.Keys() {
			pathV, _ := relV.Obj.Get(alias)
			if pathV.Kind != document.KindString {
				continue
			}
			rdoc, err := loader(alias, pathV.S)
			if err != nil {
				diags = append(diags, diag.New(diag.BadRef, "@relations/"+alias, "loader failed: %v", err).Diagnostic())
				continue
			}
			relations[alias] = rdoc
		}
	}

	out, d := resolveObject(doc, relations, it)
	diags = append(diags, d...)
	return out, diags
}

func resolveObject(v document.Value, relations map[string]document.Value, it *interp.Interpreter) (document.Value, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	out := document.NewObject()
	for _, key := range v.Obj.Keys() {
		val, _ := v.Obj.Get(key)
		resolved, d := resolveValue(key, val, relations, it)
		diags = append(diags, d...)
		out.Set(key, resolved)
	}
	return document.Obj(out), diags
}

func resolveValue(key string, v document.Value, relations map[string]document.Value, it *interp.Interpreter) (document.Value, []diag.Diagnostic) {
	if v.Kind == document.KindObject {
		if refV, ok := v.Obj.Get("@ref"); ok {
			resolved, d := resolveRef(key, refV, relations)
			return resolved, d
		}
		if rollupV, ok := v.Obj.Get("@rollup"); ok {
			filterV, _ := v.Obj.Get("filter")
			selectV, _ := v.Obj.Get("select")
			aggV, _ := v.Obj.Get("aggregate")
			resolved, d := resolveRollup(key, rollupV, filterV, selectV, aggV, relations, it)
			return resolved, d
		}
		if isDirectiveObject(v) {
			return v, nil
		}
		return resolveObject(v, relations, it)
	}
	if v.Kind == document.KindArray {
		var diags []diag.Diagnostic
		elems := make([]document.Value, len(v.Arr))
		for i, e := range v.Arr {
			r, d := resolveValue(key, e, relations, it)
			diags = append(diags, d...)
			elems[i] = r
		}
		return document.Array(elems), diags
	}
	return v, nil
}

func isDirectiveObject(v document.Value) bool {
	return v.Obj.Has("@expr") || v.Obj.Has("@view") || v.Obj.Has("@constraint") || v.Obj.Has("@query")
}

// resolveRef implements @ref: a dotted path with optional [n] indexing
// resolved against a named relation. Missing segments yield undefined.
func resolveRef(key string, refV document.Value, relations map[string]document.Value) (document.Value, []diag.Diagnostic) {
	raw, ok := stringValue(refV)
	if !ok {
		return document.Null(), []diag.Diagnostic{diag.New(diag.BadRef, key, "@ref value must be a string path").Diagnostic()}
	}
	alias, path, ok := splitAlias(raw)
	if !ok {
		return document.Null(), []diag.Diagnostic{diag.New(diag.BadRef, key, "@ref %q has no relation alias", raw).Diagnostic()}
	}
	rdoc, ok := relations[alias]
	if !ok {
		return document.Null(), []diag.Diagnostic{diag.New(diag.BadRef, key, "unknown relation %q", alias).Diagnostic()}
	}
	return walk(rdoc, parsePath(path)), nil
}

// stringValue handles both {"@ref": "alias.path"} and the bare-string
// shorthand already unwrapped by the caller.
func stringValue(v document.Value) (string, bool) {
	if v.Kind == document.KindString {
		return v.S, true
	}
	return "", false
}

// splitAlias peels the leading "alias." off a dotted ref/rollup path.
func splitAlias(raw string) (alias, rest string, ok bool) {
	idx := strings.IndexByte(raw, '.')
	if idx < 0 {
		return raw, "", true
	}
	return raw[:idx], raw[idx+1:], true
}

type pathSeg struct {
	Name     string
	HasIndex bool
	Index    int
}

func parsePath(path string) []pathSeg {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	segs := make([]pathSeg, 0, len(parts))
	for _, p := range parts {
		seg := pathSeg{Name: p}
		if i := strings.IndexByte(p, '['); i >= 0 && strings.HasSuffix(p, "]") {
			seg.Name = p[:i]
			if n, err := strconv.Atoi(p[i+1 : len(p)-1]); err == nil {
				seg.HasIndex = true
				seg.Index = n
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// walk resolves a path against v, yielding document.Null() for any
// missing segment rather than an error.
func walk(v document.Value, segs []pathSeg) document.Value {
	cur := v
	for _, s := range segs {
		if cur.Kind != document.KindObject {
			return document.Null()
		}
		next, ok := cur.Obj.Get(s.Name)
		if !ok {
			return document.Null()
		}
		cur = next
		if s.HasIndex {
			if cur.Kind != document.KindArray || s.Index < 0 || s.Index >= len(cur.Arr) {
				return document.Null()
			}
			cur = cur.Arr[s.Index]
		}
	}
	return cur
}

// resolveRollup implements @rollup: shorthand "relation.path.field:agg"
// or the object form handled by the caller passing filter/select/
// aggregate as separate values.
func resolveRollup(key string, rollupV, filterV, selectV, aggV document.Value, relations map[string]document.Value, it *interp.Interpreter) (document.Value, []diag.Diagnostic) {
	var relation, path, field, aggName string

	if rollupV.Kind == document.KindString {
		raw := rollupV.S
		var rest string
		var ok bool
		relation, rest, ok = splitAlias(raw)
		if !ok {
			return document.Null(), []diag.Diagnostic{diag.New(diag.BadRollup, key, "@rollup %q missing relation", raw).Diagnostic()}
		}
		pathPart := rest
		if idx := strings.LastIndexByte(rest, ':'); idx >= 0 {
			pathPart = rest[:idx]
			aggName = rest[idx+1:]
		}
		segs := strings.Split(pathPart, ".")
		if len(segs) == 0 {
			return document.Null(), []diag.Diagnostic{diag.New(diag.BadRollup, key, "@rollup %q missing path", raw).Diagnostic()}
		}
		field = segs[len(segs)-1]
		path = strings.Join(segs[:len(segs)-1], ".")
	} else if rollupV.Kind == document.KindObject {
		if r, ok := rollupV.Obj.Get("relation"); ok {
			relation, _ = stringValue(r)
		}
		if p, ok := rollupV.Obj.Get("property"); ok {
			full, _ := stringValue(p)
			segs := strings.Split(full, ".")
			field = segs[len(segs)-1]
			path = strings.Join(segs[:len(segs)-1], ".")
		}
		if a, ok := rollupV.Obj.Get("aggregate"); ok {
			aggName, _ = stringValue(a)
		}
		if f, ok := rollupV.Obj.Get("filter"); ok {
			filterV = f
		}
	} else {
		return document.Null(), []diag.Diagnostic{diag.New(diag.BadRollup, key, "@rollup value must be a string or object").Diagnostic()}
	}

	if s, ok := stringValue(aggV); ok && aggName == "" {
		aggName = s
	}
	if s, ok := stringValue(selectV); ok && field == "" {
		field = s
	}

	rdoc, ok := relations[relation]
	if !ok {
		return document.Null(), []diag.Diagnostic{diag.New(diag.BadRollup, key, "unknown relation %q", relation).Diagnostic()}
	}
	arr := walk(rdoc, parsePath(path))
	if arr.Kind != document.KindArray {
		return document.Null(), []diag.Diagnostic{diag.New(diag.BadRollup, key, "rollup path %q did not resolve to an array", path).Diagnostic()}
	}

	var filterExpr string
	if s, ok := stringValue(filterV); ok {
		filterExpr = s
	}

	items := arr.Arr
	if filterExpr != "" {
		expr, err := parser.ParseExpr(filterExpr)
		if err != nil {
			return document.Null(), []diag.Diagnostic{diag.New(diag.BadRollup, key, "filter parse error: %v", err).Diagnostic()}
		}
		var kept []document.Value
		for _, item := range items {
			scope := interp.NewScope(nil)
			if item.Kind == document.KindObject {
				for _, k := range item.Obj.Keys() {
					fv, _ := item.Obj.Get(k)
					scope.Set(k, fv)
				}
			}
			v, err := it.Eval(expr, scope, nil)
			if err == nil && v.Truthy() {
				kept = append(kept, item)
			}
		}
		items = kept
	}

	values := make([]document.Value, 0, len(items))
	for _, item := range items {
		if field == "" {
			values = append(values, item)
			continue
		}
		if item.Kind == document.KindObject {
			if fv, ok := item.Obj.Get(field); ok {
				values = append(values, fv)
				continue
			}
		}
		values = append(values, document.Null())
	}

	result, err := aggregate(aggName, values)
	if err != nil {
		return document.Null(), []diag.Diagnostic{diag.New(diag.BadRollup, key, "%v", err).Diagnostic()}
	}
	return result, nil
}
