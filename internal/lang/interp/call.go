package interp

import (
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/ast"
)

// evalCall resolves the callee and dispatches with the correct `this`
// binding: a member-expression callee (e.g. arr.map(...)) binds `this`
// to the receiver so array/string built-ins can operate on it; any
// other callee form calls with a nil `this`, since built-ins ignore
// this unless invoked in member-call position.
func (it *Interpreter) evalCall(n *ast.Call, scope *Scope, this *document.Value) (document.Value, error) {
	var fnVal document.Value
	var boundThis *document.Value
	var err error

	if member, ok := n.Callee.(*ast.Member); ok {
		recv, rerr := it.Eval(member.Receiver, scope, this)
		if rerr != nil {
			return document.Value{}, rerr
		}
		fnVal = memberGet(recv, member.Name)
		if fnVal.Kind != document.KindFunction {
			if fn, ok := it.Builtins.Resolve("$" + member.Name); ok {
				fnVal = document.Func(fn)
			}
		}
		recvCopy := recv
		boundThis = &recvCopy
	} else {
		fnVal, err = it.Eval(n.Callee, scope, this)
		if err != nil {
			return document.Value{}, err
		}
	}

	if fnVal.Kind != document.KindFunction {
		return document.Value{}, diag.New(diag.ExprErr, "", "call target is not a function")
	}

	args := make([]document.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := it.Eval(a, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		args = append(args, v)
	}
	return fnVal.Fn.Call(args, boundThis)
}

// closure implements document.Callable for a language-level lambda,
// capturing the scope active at the point the lambda expression was
// evaluated.
type closure struct {
	it     *Interpreter
	scope  *Scope
	params []string
	body   ast.Expr
}

func (c *closure) Call(args []document.Value, this *document.Value) (document.Value, error) {
	callScope := c.scope.Child()
	for i, p := range c.params {
		if i < len(args) {
			callScope.Set(p, args[i])
		} else {
			callScope.Set(p, document.Null())
		}
	}
	return c.it.Eval(c.body, callScope, this)
}

func (c *closure) String() string { return "<lambda>" }
