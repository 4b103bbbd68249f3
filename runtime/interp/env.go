package interp

import lumen "github.com/colin-oos/lumen-sub000"

// env is a persistent chain of bindings.  Entering a scope saves the
// chain pointer and leaving restores it, which drops every binding made
// inside.
//
// A binding belongs to the frame (function call or actor message) that
// created it.  Assignment updates a binding of the current frame in place
// so that nested blocks can change variables of the enclosing body (e.g.,
// actor state).  Assignment to a binding of another frame shadows it
// instead, so a call never changes its caller's variables.
//
// Closures and actors capture a snapshot, in which every binding is
// frozen.  Frozen bindings are never updated.
type env struct {
	name   string
	value  lumen.Value
	frame  int
	frozen bool
	next   *env
}

func (e *env) lookup(name string) (*env, bool) {
	for ; e != nil; e = e.next {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

func (i *Interpreter) bind(name string, val lumen.Value) {
	i.env = &env{name: name, value: val, frame: i.frame, next: i.env}
}

func (i *Interpreter) assign(name string, val lumen.Value) {
	if b, ok := i.env.lookup(name); ok && b.frame == i.frame && !b.frozen {
		b.value = val
		return
	}
	i.bind(name, val)
}

// snapshot returns the current chain with its live bindings copied.  The
// copy stops at the first frozen link since everything below it is frozen
// too.
func (i *Interpreter) snapshot() *env {
	var head *env
	tail := &head
	e := i.env
	for ; e != nil && !e.frozen; e = e.next {
		b := *e
		b.frozen = true
		*tail = &b
		tail = &b.next
	}
	*tail = e
	return head
}

// enterFrame starts a new frame over the captured chain and returns a
// function that restores the caller's chain, frame, and module.
func (i *Interpreter) enterFrame(captured *env, module string) func() {
	savedEnv, savedFrame, savedModule := i.env, i.frame, i.module
	i.frames++
	i.env, i.frame, i.module = captured, i.frames, module
	return func() {
		i.env, i.frame, i.module = savedEnv, savedFrame, savedModule
	}
}
