// Package builtins implements the "$"-prefixed built-in function
// table: math, string, format, conversion, date, utility, and array
// operations, each exposed as a document.Callable so the interpreter
// can resolve and invoke them uniformly with user lambdas.
package builtins

import (
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/units"
)

// fn adapts a plain Go closure to document.Callable, the shape every
// built-in and every user-defined lambda share.
type fn struct {
	name string
	call func(args []document.Value, this *document.Value) (document.Value, error)
}

func (f *fn) Call(args []document.Value, this *document.Value) (document.Value, error) {
	return f.call(args, this)
}

func (f *fn) String() string { return f.name }

// Registry is the closed, enumerated built-in table: the built-in set
// is closed, and hosts cannot register additional names.
type Registry struct {
	table map[string]document.Callable
	units units.Registry
}

// New builds the built-in table. reg supplies the unit registry $convert
// draws from.
func New(reg units.Registry) *Registry {
	r := &Registry{table: map[string]document.Callable{}, units: reg}
	r.registerMath()
	r.registerStrings()
	r.registerFormat()
	r.registerConvert()
	r.registerDate()
	r.registerUtil()
	r.registerArray()
	return r
}

func (r *Registry) Resolve(name string) (document.Callable, bool) {
	c, ok := r.table[name]
	return c, ok
}

func (r *Registry) add(name string, call func(args []document.Value, this *document.Value) (document.Value, error)) {
	r.table[name] = &fn{name: name, call: call}
}

func arg(args []document.Value, i int) document.Value {
	if i < len(args) {
		return args[i]
	}
	return document.Null()
}
