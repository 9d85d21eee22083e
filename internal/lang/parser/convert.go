package parser

import (
	"fmt"

	"github.com/ldcrun/ldc/internal/lang/ast"
)

// Convert lowers a parsed Expression into an ast.Expr tree. It is the
// sole place that knows about the participle-shaped grammar; everything
// downstream (interp, indexer) only ever sees ast.Expr.
func Convert(e *Expression) (ast.Expr, error) {
	if e == nil {
		return nil, fmt.Errorf("parser: nil expression")
	}
	cond, err := convertOr(e.Cond)
	if err != nil {
		return nil, err
	}
	if e.Then == nil {
		return cond, nil
	}
	then, err := Convert(e.Then)
	if err != nil {
		return nil, err
	}
	els, err := Convert(e.Else)
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Cond: cond, Then: then, Else: els}, nil
}

func convertOr(e *OrExpr) (ast.Expr, error) {
	left, err := convertAnd(e.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Rest {
		right, err := convertAnd(tail.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func convertAnd(e *AndExpr) (ast.Expr, error) {
	left, err := convertNullish(e.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Rest {
		right, err := convertNullish(tail.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func convertNullish(e *NullishExpr) (ast.Expr, error) {
	left, err := convertEquality(e.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Rest {
		right, err := convertEquality(tail.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "??", Left: left, Right: right}
	}
	return left, nil
}

func convertEquality(e *EqualityExpr) (ast.Expr, error) {
	left, err := convertRel(e.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Rest {
		right, err := convertRel(tail.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: tail.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertRel(e *RelExpr) (ast.Expr, error) {
	left, err := convertAdd(e.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Rest {
		right, err := convertAdd(tail.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: tail.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertAdd(e *AddExpr) (ast.Expr, error) {
	left, err := convertMul(e.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Rest {
		right, err := convertMul(tail.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: tail.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertMul(e *MulExpr) (ast.Expr, error) {
	left, err := convertPow(e.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range e.Rest {
		right, err := convertPow(tail.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: tail.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertPow(e *PowExpr) (ast.Expr, error) {
	left, err := convertUnary(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Right == nil {
		return left, nil
	}
	right, err := convertPow(e.Right)
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Op: "**", Left: left, Right: right}, nil
}

func convertUnary(e *UnaryExpr) (ast.Expr, error) {
	if e.Unary != nil {
		operand, err := convertUnary(e.Unary.Operand)
		if err != nil {
			return nil, err
		}
		op := e.Unary.Op
		if op == "!" {
			op = "not"
		}
		return &ast.Unary{Op: op, Operand: operand}, nil
	}
	return convertPostfix(e.Postfix)
}

func convertPostfix(e *PostfixExpr) (ast.Expr, error) {
	cur, err := convertPrimary(e.Primary)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		switch {
		case op.Member != nil:
			cur = &ast.Member{Receiver: cur, Name: *op.Member}
		case op.Index != nil:
			key, err := Convert(op.Index)
			if err != nil {
				return nil, err
			}
			cur = &ast.Index{Receiver: cur, Key: key}
		case op.Call != nil:
			var args []ast.Expr
			if op.Call.Args != nil {
				for _, a := range op.Call.Args {
					ae, err := Convert(a)
					if err != nil {
						return nil, err
					}
					args = append(args, ae)
				}
			}
			cur = &ast.Call{Callee: cur, Args: args}
		default:
			// Zero-arg call: "(" ")" with no CallArgs captured.
			cur = &ast.Call{Callee: cur, Args: nil}
		}
	}
	return cur, nil
}

func convertPrimary(e *PrimaryExpr) (ast.Expr, error) {
	switch {
	case e.Lambda != nil:
		return convertLambda(e.Lambda)
	case e.Paren != nil:
		return Convert(e.Paren)
	case e.Array != nil:
		var elems []ast.Expr
		for _, el := range e.Array.Elems {
			ee, err := Convert(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ee)
		}
		return &ast.ArrayLit{Elems: elems}, nil
	case e.Object != nil:
		var entries []ast.ObjectEntry
		for _, ent := range e.Object.Entries {
			ve, err := Convert(ent.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.ObjectEntry{Key: ent.Key, Value: ve})
		}
		return &ast.ObjectLit{Entries: entries}, nil
	case e.Literal != nil:
		return convertLiteral(e.Literal), nil
	case e.Ident != nil:
		return &ast.Ident{Name: *e.Ident}, nil
	}
	return nil, fmt.Errorf("parser: empty primary expression")
}

func convertLambda(l *LambdaExpr) (ast.Expr, error) {
	if l.Multi != nil {
		body, err := Convert(l.Multi.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Params: l.Multi.Params, Body: body}, nil
	}
	body, err := Convert(l.Single.Body)
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Params: []string{l.Single.Param}, Body: body}, nil
}

func convertLiteral(l *Literal) ast.Expr {
	switch {
	case l.Null:
		return &ast.Literal{Kind: ast.LitNull}
	case l.True:
		return &ast.Literal{Kind: ast.LitBool, Bool: true}
	case l.False:
		return &ast.Literal{Kind: ast.LitBool, Bool: false}
	case l.Float != nil:
		return &ast.Literal{Kind: ast.LitFloat, Float: *l.Float}
	case l.Int != nil:
		return &ast.Literal{Kind: ast.LitInt, Int: *l.Int}
	case l.Str != nil:
		return &ast.Literal{Kind: ast.LitString, Str: unquote(*l.Str)}
	}
	return &ast.Literal{Kind: ast.LitNull}
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	inner := s[1 : len(s)-1]
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, inner[i])
			}
			continue
		}
		out = append(out, inner[i])
	}
	return string(out)
}
