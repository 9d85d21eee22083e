// Package interp evaluates internal/lang/ast expression trees against
// document values: scope-chain name resolution, arithmetic dispatch
// rules, and per-evaluation auto-memoization.
package interp

import "github.com/ldcrun/ldc/internal/document"

// Scope is a lexical environment frame. Lambdas capture the Scope active
// at their point of definition (closures), not at call time.
type Scope struct {
	parent *Scope
	vars   map[string]document.Value
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: map[string]document.Value{}}
}

func (s *Scope) Set(name string, v document.Value) {
	s.vars[name] = v
}

// Lookup walks the parent chain. The bool is false if name is bound
// nowhere in the chain (distinct from being bound to KindNull).
func (s *Scope) Lookup(name string) (document.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return document.Value{}, false
}

// Child creates a new frame whose parent is s.
func (s *Scope) Child() *Scope {
	return NewScope(s)
}
