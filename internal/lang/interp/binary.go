package interp

import (
	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/ast"
	"github.com/ldcrun/ldc/internal/units"
)

func (it *Interpreter) evalBinary(n *ast.Binary, scope *Scope, this *document.Value) (document.Value, error) {
	// Short-circuit operators evaluate the right side lazily.
	switch n.Op {
	case "&&":
		l, err := it.Eval(n.Left, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		if !l.Truthy() {
			return l, nil
		}
		return it.Eval(n.Right, scope, this)
	case "||":
		l, err := it.Eval(n.Left, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		if l.Truthy() {
			return l, nil
		}
		return it.Eval(n.Right, scope, this)
	case "??":
		l, err := it.Eval(n.Left, scope, this)
		if err != nil {
			return document.Value{}, err
		}
		if !l.IsNull() {
			return l, nil
		}
		return it.Eval(n.Right, scope, this)
	}

	l, err := it.Eval(n.Left, scope, this)
	if err != nil {
		return document.Value{}, err
	}
	r, err := it.Eval(n.Right, scope, this)
	if err != nil {
		return document.Value{}, err
	}

	switch n.Op {
	case "==":
		return document.Bool(valuesEqual(l, r)), nil
	case "!=":
		return document.Bool(!valuesEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		return compare(n.Op, l, r)
	case "+":
		return it.evalAdd(l, r)
	case "-":
		return it.evalArith(n.Op, l, r)
	case "*":
		return it.evalArith(n.Op, l, r)
	case "/":
		return it.evalArith(n.Op, l, r)
	case "%":
		return it.evalMod(l, r)
	case "**":
		return it.evalPow(l, r)
	default:
		return document.Value{}, diag.New(diag.ExprErr, "", "unknown binary operator %q", n.Op)
	}
}

// evalAdd dispatches on operand kind: string concatenation wins if
// either operand is a string; quantity addition if both are quantities;
// otherwise exact decimal/int arithmetic.
func (it *Interpreter) evalAdd(l, r document.Value) (document.Value, error) {
	if l.Kind == document.KindString || r.Kind == document.KindString {
		return document.Str(stringify(l) + stringify(r)), nil
	}
	if l.Kind == document.KindQuantity && r.Kind == document.KindQuantity {
		q, err := l.Q.Add(r.Q)
		if err != nil {
			return document.Value{}, toDiag(err)
		}
		return document.Quantity(q), nil
	}
	return it.evalArith("+", l, r)
}

func (it *Interpreter) evalArith(op string, l, r document.Value) (document.Value, error) {
	if l.Kind == document.KindQuantity || r.Kind == document.KindQuantity {
		return it.evalQuantityArith(op, l, r)
	}
	if l.Kind == document.KindInt && r.Kind == document.KindInt {
		switch op {
		case "+":
			return document.Int(l.I + r.I), nil
		case "-":
			return document.Int(l.I - r.I), nil
		case "*":
			return document.Int(l.I * r.I), nil
		case "/":
			if r.I == 0 {
				return document.Value{}, diag.New(diag.DivByZero, "", "division by zero")
			}
			ld, rd := decimal.NewFromInt(l.I), decimal.NewFromInt(r.I)
			q, _ := ld.Div(rd)
			return document.Dec(q), nil
		}
	}
	ld, ok1 := l.AsDecimal()
	rd, ok2 := r.AsDecimal()
	if !ok1 || !ok2 {
		return document.Value{}, diag.New(diag.ExprErr, "", "arithmetic %q on non-numeric operand", op)
	}
	switch op {
	case "+":
		return document.Dec(ld.Add(rd)), nil
	case "-":
		return document.Dec(ld.Sub(rd)), nil
	case "*":
		return document.Dec(ld.Mul(rd)), nil
	case "/":
		q, err := ld.Div(rd)
		if err != nil {
			return document.Value{}, diag.New(diag.DivByZero, "", "division by zero")
		}
		return document.Dec(q), nil
	default:
		return document.Value{}, diag.New(diag.ExprErr, "", "unknown arithmetic operator %q", op)
	}
}

func (it *Interpreter) evalQuantityArith(op string, l, r document.Value) (document.Value, error) {
	switch op {
	case "-":
		lq, rq := toQuantity(l), toQuantity(r)
		q, err := lq.Sub(rq)
		if err != nil {
			return document.Value{}, toDiag(err)
		}
		return document.Quantity(q), nil
	case "*":
		if l.Kind == document.KindQuantity && r.Kind == document.KindQuantity {
			return document.Quantity(l.Q.Mul(r.Q)), nil
		}
		if l.Kind == document.KindQuantity {
			s, ok := r.AsDecimal()
			if !ok {
				return document.Value{}, diag.New(diag.ExprErr, "", "cannot multiply quantity by non-numeric")
			}
			return document.Quantity(l.Q.Scale(s)), nil
		}
		s, ok := l.AsDecimal()
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "cannot multiply quantity by non-numeric")
		}
		return document.Quantity(r.Q.Scale(s)), nil
	case "/":
		if l.Kind == document.KindQuantity && r.Kind == document.KindQuantity {
			q, err := l.Q.Div(r.Q)
			if err != nil {
				return document.Value{}, toDiag(err)
			}
			return document.Quantity(q), nil
		}
		if l.Kind == document.KindQuantity {
			s, ok := r.AsDecimal()
			if !ok {
				return document.Value{}, diag.New(diag.ExprErr, "", "cannot divide quantity by non-numeric")
			}
			if s.IsZero() {
				return document.Value{}, diag.New(diag.DivByZero, "", "division by zero")
			}
			inv, _ := decimal.NewFromInt(1).Div(s)
			return document.Quantity(l.Q.Scale(inv)), nil
		}
		return document.Value{}, diag.New(diag.ExprErr, "", "cannot divide scalar by quantity")
	default:
		return document.Value{}, diag.New(diag.ExprErr, "", "quantity arithmetic does not support %q", op)
	}
}

func toQuantity(v document.Value) units.Quantity {
	if v.Kind == document.KindQuantity {
		return v.Q
	}
	d, _ := v.AsDecimal()
	return units.Quantity{Magnitude: d, Unit: units.Base}
}

func (it *Interpreter) evalMod(l, r document.Value) (document.Value, error) {
	if l.Kind == document.KindInt && r.Kind == document.KindInt {
		if r.I == 0 {
			return document.Value{}, diag.New(diag.DivByZero, "", "division by zero")
		}
		return document.Int(l.I % r.I), nil
	}
	ld, ok1 := l.AsDecimal()
	rd, ok2 := r.AsDecimal()
	if !ok1 || !ok2 {
		return document.Value{}, diag.New(diag.ExprErr, "", "%% on non-numeric operand")
	}
	if rd.IsZero() {
		return document.Value{}, diag.New(diag.DivByZero, "", "division by zero")
	}
	q, _ := ld.Div(rd)
	trunc := q.Truncate(0)
	return document.Dec(ld.Sub(trunc.Mul(rd))), nil
}

func (it *Interpreter) evalPow(l, r document.Value) (document.Value, error) {
	ld, ok1 := l.AsDecimal()
	rd, ok2 := r.AsDecimal()
	if !ok1 || !ok2 {
		return document.Value{}, diag.New(diag.ExprErr, "", "** on non-numeric operand")
	}
	result := ld.Pow(rd)
	if l.Kind == document.KindInt && r.Kind == document.KindInt && r.I >= 0 {
		return document.Int(int64(result.Float64())), nil
	}
	return document.Dec(result), nil
}

func compare(op string, l, r document.Value) (document.Value, error) {
	if l.Kind == document.KindString && r.Kind == document.KindString {
		return document.Bool(strCompare(op, l.S, r.S)), nil
	}
	if l.Kind == document.KindQuantity || r.Kind == document.KindQuantity {
		lq, rq := toQuantity(l), toQuantity(r)
		if !lq.Unit.Dim.Simplify().Equal(rq.Unit.Dim.Simplify()) {
			return document.Value{}, diag.New(diag.UnitMismatch, "", "cannot compare incompatible units")
		}
		c := lq.Magnitude.Cmp(rq.Magnitude)
		return document.Bool(cmpOp(op, c)), nil
	}
	ld, ok1 := l.AsDecimal()
	rd, ok2 := r.AsDecimal()
	if !ok1 || !ok2 {
		return document.Value{}, diag.New(diag.ExprErr, "", "comparison %q on non-comparable operands", op)
	}
	return document.Bool(cmpOp(op, ld.Cmp(rd))), nil
}

func strCompare(op, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func cmpOp(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func toDiag(err error) error {
	if _, ok := err.(units.ErrUnitMismatch); ok {
		return diag.New(diag.UnitMismatch, "", "%v", err)
	}
	if _, ok := err.(decimal.ErrDivByZero); ok {
		return diag.New(diag.DivByZero, "", "division by zero")
	}
	return diag.New(diag.ExprErr, "", "%v", err)
}
