package ast

// FreeVars collects the free identifiers of e, excluding names bound by
// enclosing lambda parameters. A node's dependency reads are the free
// variables of its AST. Order is first-occurrence, deduped.
func FreeVars(e Expr) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(e Expr, bound map[string]bool)

	add := func(name string, bound map[string]bool) {
		if bound[name] {
			return
		}
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}

	walk = func(e Expr, bound map[string]bool) {
		switch n := e.(type) {
		case nil:
			return
		case *Literal:
		case *Ident:
			add(n.Name, bound)
		case *Unary:
			walk(n.Operand, bound)
		case *Binary:
			walk(n.Left, bound)
			walk(n.Right, bound)
		case *Ternary:
			walk(n.Cond, bound)
			walk(n.Then, bound)
			walk(n.Else, bound)
		case *Member:
			walk(n.Receiver, bound)
		case *Index:
			walk(n.Receiver, bound)
			walk(n.Key, bound)
		case *Call:
			walk(n.Callee, bound)
			for _, a := range n.Args {
				walk(a, bound)
			}
		case *Lambda:
			inner := make(map[string]bool, len(bound)+len(n.Params))
			for k := range bound {
				inner[k] = true
			}
			for _, p := range n.Params {
				inner[p] = true
			}
			walk(n.Body, inner)
		case *ArrayLit:
			for _, el := range n.Elems {
				walk(el, bound)
			}
		case *ObjectLit:
			for _, entry := range n.Entries {
				walk(entry.Value, bound)
			}
		}
	}

	walk(e, map[string]bool{})
	return order
}
