package interp

import (
	"strings"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/ast"
	"github.com/ldcrun/ldc/internal/units"
)

// BuiltinResolver resolves a "$name" identifier to its implementation.
// internal/lang/builtins implements this; interp depends only on the
// interface to avoid an import cycle (builtins needs document.Callable,
// not interp).
type BuiltinResolver interface {
	Resolve(name string) (document.Callable, bool)
}

// Interpreter evaluates ast.Expr trees. One Interpreter is constructed
// per document evaluation run; its memo table's lifetime is therefore
// scoped to a single evaluation.
type Interpreter struct {
	Builtins BuiltinResolver
	Units    units.Registry

	memo map[memoKey]document.Value
}

type memoKey struct {
	node ast.Expr
	this *document.Object
}

func New(builtins BuiltinResolver, reg units.Registry) *Interpreter {
	return &Interpreter{Builtins: builtins, Units: reg, memo: map[memoKey]document.Value{}}
}

// InvalidateMemo drops all cached sub-evaluations. The evaluator façade
// calls it at the start of each fixpoint iteration, since a memoized node
// may read a value that changed in the previous iteration.
func (it *Interpreter) InvalidateMemo() {
	it.memo = map[memoKey]document.Value{}
}

// EvalDirective evaluates the top-level expression of an @expr/@constraint
// directive, memoizing on (node, this-object-identity) so repeated
// fixpoint passes over an unchanged layer don't redo the work.
func (it *Interpreter) EvalDirective(e ast.Expr, scope *Scope, this *document.Value) (document.Value, error) {
	var thisObj *document.Object
	if this != nil && this.Kind == document.KindObject {
		thisObj = this.Obj
	}
	key := memoKey{node: e, this: thisObj}
	if v, ok := it.memo[key]; ok {
		return v, nil
	}
	v, err := it.Eval(e, scope, this)
	if err != nil {
		return v, err
	}
	it.memo[key] = v
	return v, nil
}

// Eval evaluates e in scope, with this bound for member-receiver call
// dispatch and bare-identifier fallback.
func (it *Interpreter) Eval(e ast.Expr, scope *Scope, this *document.Value) (document.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return it.evalLiteral(n)
	case *ast.Ident:
		return it.evalIdent(n, scope, this)
	case *ast.Unary:
		return it.evalUnary(n, scope, this)
	case *ast.Binary:
		return it.evalBinary(n, scope, this)
	case *ast.Ternary:
		cond, err := it.Eval(n.Cond, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		if cond.Truthy() {
			return it.Eval(n.Then, scope, this)
		}
		return it.Eval(n.Else, scope, this)
	case *ast.Member:
		recv, err := it.Eval(n.Receiver, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		return memberGet(recv, n.Name), nil
	case *ast.Index:
		recv, err := it.Eval(n.Receiver, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		key, err := it.Eval(n.Key, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		return indexGet(recv, key), nil
	case *ast.Call:
		return it.evalCall(n, scope, this)
	case *ast.Lambda:
		return document.Func(&closure{it: it, scope: scope, params: n.Params, body: n.Body}), nil
	case *ast.ArrayLit:
		vals := make([]document.Value, 0, len(n.Elems))
		for _, el := range n.Elems {
			v, err := it.Eval(el, scope, this)
			if err != nil {
				return document.Value{}, err
			}
			vals = append(vals, v)
		}
		return document.Array(vals), nil
	case *ast.ObjectLit:
		obj := document.NewObject()
		for _, entry := range n.Entries {
			v, err := it.Eval(entry.Value, scope, this)
			if err != nil {
				return document.Value{}, err
			}
			obj.Set(entry.Key, v)
		}
		return document.Obj(obj), nil
	default:
		return document.Value{}, diag.New(diag.ExprErr, "", "unsupported expression node %T", e)
	}
}

func (it *Interpreter) evalLiteral(n *ast.Literal) (document.Value, error) {
	switch n.Kind {
	case ast.LitNull:
		return document.Null(), nil
	case ast.LitBool:
		return document.Bool(n.Bool), nil
	case ast.LitInt:
		return document.Int(n.Int), nil
	case ast.LitFloat:
		d, err := decimal.NewFromString(n.Float)
		if err != nil {
			return document.Value{}, diag.New(diag.ExprErr, "", "invalid decimal literal %q: %v", n.Float, err)
		}
		return document.Dec(d), nil
	case ast.LitString:
		return document.Str(n.Str), nil
	default:
		return document.Null(), nil
	}
}

// evalIdent resolves a bare identifier: scope chain, then as a property
// of $this, then as a "$"-prefixed builtin, else undefined.
func (it *Interpreter) evalIdent(n *ast.Ident, scope *Scope, this *document.Value) (document.Value, error) {
	name := n.Name
	if name == "this" || name == "$this" {
		if this != nil {
			return *this, nil
		}
		return document.Null(), nil
	}
	if v, ok := scope.Lookup(name); ok {
		return v, nil
	}
	if this != nil && this.Kind == document.KindObject {
		if v, ok := this.Obj.Get(name); ok {
			return v, nil
		}
	}
	if strings.HasPrefix(name, "$") && it.Builtins != nil {
		if fn, ok := it.Builtins.Resolve(name); ok {
			return document.Func(fn), nil
		}
	}
	return document.Value{}, diag.New(diag.ExprErr, "", "undefined identifier %q", name)
}

func (it *Interpreter) evalUnary(n *ast.Unary, scope *Scope, this *document.Value) (document.Value, error) {
	v, err := it.Eval(n.Operand, scope, this)
	if err != nil {
		return document.Value{}, err
	}
	switch n.Op {
	case "not":
		return document.Bool(!v.Truthy()), nil
	case "-":
		if v.Kind == document.KindInt {
			return document.Int(-v.I), nil
		}
		if d, ok := v.AsDecimal(); ok {
			return document.Dec(d.Neg()), nil
		}
		if v.Kind == document.KindQuantity {
			return document.Quantity(units.Quantity{Magnitude: v.Q.Magnitude.Neg(), Unit: v.Q.Unit}), nil
		}
		return document.Value{}, diag.New(diag.ExprErr, "", "unary - on non-numeric value")
	case "+":
		if v.IsNumeric() || v.Kind == document.KindQuantity {
			return v, nil
		}
		return document.Value{}, diag.New(diag.ExprErr, "", "unary + on non-numeric value")
	default:
		return document.Value{}, diag.New(diag.ExprErr, "", "unknown unary operator %q", n.Op)
	}
}

func memberGet(recv document.Value, name string) document.Value {
	if recv.Kind == document.KindObject {
		if v, ok := recv.Obj.Get(name); ok {
			return v
		}
	}
	return document.Null()
}

func indexGet(recv, key document.Value) document.Value {
	switch recv.Kind {
	case document.KindArray:
		if key.Kind != document.KindInt {
			return document.Null()
		}
		i := key.I
		if i < 0 || int(i) >= len(recv.Arr) {
			return document.Null()
		}
		return recv.Arr[i]
	case document.KindObject:
		if key.Kind != document.KindString {
			return document.Null()
		}
		if v, ok := recv.Obj.Get(key.S); ok {
			return v
		}
		return document.Null()
	default:
		return document.Null()
	}
}
