package document

// Object is an insertion-ordered string-keyed map. Document order
// matters in exactly two places: the context map's "first entry" rule,
// and the indexer's traversal order, which the scheduler relies on for
// deterministic layer ordering — so Object preserves insertion order
// rather than deferring to Go's randomized map iteration.
type Object struct {
	keys []string
	vals map[string]Value
}

func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

func (o *Object) Set(key string, v Value) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

func (o *Object) Keys() []string {
	return o.keys
}

func (o *Object) Len() int { return len(o.keys) }

// Clone returns a shallow copy: new key order slice and map, same Values.
func (o *Object) Clone() *Object {
	out := NewObject()
	for _, k := range o.keys {
		out.Set(k, o.vals[k])
	}
	return out
}
