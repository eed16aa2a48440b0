package symbols

import "github.com/polarity-go/elaborator/internal/typesystem"

// binding is one entry of a Context.
type binding struct {
	name string
	ty   typesystem.Value
}

// Context is the stack of locally bound variables in scope while
// checking one declaration (spec §4.1). Each frame is tagged with its
// type, a Value, already in weak-head normal form. Contexts are
// immutable: Extend returns a new Context with its own copy of the
// frames, the same append-only discipline the teacher's Environment uses
// for its (name-keyed, outer-chained) scope frames.
type Context struct {
	frames []binding
	env    typesystem.Env
}

// Empty is the context of a top-level declaration's own telescope, before
// any parameter has been bound.
func Empty() *Context {
	return &Context{}
}

// Extend returns a new context with a fresh variable of type ty bound as
// the new innermost entry, and the De Bruijn level assigned to it (spec
// §4.1 "extend(name, type_value) -> returns a fresh De Bruijn level").
func (c *Context) Extend(name string, ty typesystem.Value) (*Context, int) {
	level := len(c.frames)
	next := &Context{
		frames: append(append([]binding{}, c.frames...), binding{name: name, ty: ty}),
		env:    c.env.Extend(typesystem.VNeutral{Head: typesystem.HVar{Level: level, Name: name}}),
	}
	return next, level
}

// Lookup resolves a De Bruijn index to its display name and type (spec
// §4.1 "lookup(idx) -> (name, type_value), O(1)"). An out-of-range index
// is a structural bug per spec §4.1, so it panics rather than returning
// an error.
func (c *Context) Lookup(idx int) (string, typesystem.Value) {
	level := c.Depth() - 1 - idx
	if level < 0 || level >= len(c.frames) {
		panic("symbols: De Bruijn index out of range — structural bug, not a user error")
	}
	b := c.frames[level]
	return b.name, b.ty
}

// TypeAtLevel is Lookup's De-Bruijn-level-addressed counterpart, for
// callers that work in level space.
func (c *Context) TypeAtLevel(level int) typesystem.Value {
	if level < 0 || level >= len(c.frames) {
		panic("symbols: De Bruijn level out of range — structural bug, not a user error")
	}
	return c.frames[level].ty
}

// Depth is the number of bindings in scope, i.e. the next fresh De Bruijn
// level Extend would hand out.
func (c *Context) Depth() int {
	return len(c.frames)
}

// ToEnv returns the evaluation environment of neutral variables this
// context denotes (spec §4.1 "to_env() -> view as an environment of
// neutral variables, used for read-back"): evaluating any term in this
// context against ToEnv() produces the value that term denotes with its
// free variables left as opaque neutrals, exactly what read-back needs.
func (c *Context) ToEnv() typesystem.Env {
	return c.env
}
