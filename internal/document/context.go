package document

import "strings"

// Context is the @context map: a mapping from short prefix names to IRI
// bases, insertion-ordered so "the first entry" rule for prefix-less
// keys is well defined.
type Context struct {
	prefixes []string
	bases    map[string]string
}

func NewContext() *Context {
	return &Context{bases: make(map[string]string)}
}

func ParseContext(v Value) *Context {
	c := NewContext()
	if v.Kind != KindObject || v.Obj == nil {
		return c
	}
	for _, k := range v.Obj.Keys() {
		val, _ := v.Obj.Get(k)
		if val.Kind == KindString {
			c.prefixes = append(c.prefixes, k)
			c.bases[k] = val.S
		}
	}
	return c
}

// Expand resolves a CURIE or plain key to an absolute IRI.
// "prefix:local" expands using the named prefix's base; a plain key with
// no prefix uses the context's first entry as its base. If there is no
// context at all, the key is returned unchanged (opaque IRI).
func (c *Context) Expand(key string) string {
	if idx := strings.IndexByte(key, ':'); idx >= 0 {
		prefix, local := key[:idx], key[idx+1:]
		if base, ok := c.bases[prefix]; ok {
			return base + local
		}
	}
	if len(c.prefixes) > 0 {
		return c.bases[c.prefixes[0]] + key
	}
	return key
}
