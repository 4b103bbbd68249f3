package interp

import (
	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
)

// Closure is a function value: a Fn node with a snapshot of the bindings
// visible where it was evaluated.
type Closure struct {
	Fn     *ast.Fn
	env    *env
	module string
}

var _ lumen.Callable = (*Closure)(nil)

func (*Closure) Kind() lumen.Kind { return lumen.FuncKind }

func (c *Closure) Name() string {
	if c.Fn.Name != "" {
		return c.Fn.Name
	}
	return "fn"
}

func (c *Closure) Effects() []string {
	return c.Fn.Effects
}

func (i *Interpreter) closure(fn *ast.Fn) *Closure {
	return &Closure{Fn: fn, env: i.snapshot(), module: i.module}
}

// call invokes callee after the gate has approved its declared effects.
// Missing arguments are null and extra arguments are ignored.
func (i *Interpreter) call(callee lumen.Value, args []lumen.Value) lumen.Value {
	fn, ok := callee.(lumen.Callable)
	if !ok {
		return i.signal(&lumen.NotCallable{Callee: lumen.Display(callee)})
	}
	if d := i.gate.CheckSet(fn.Effects()); d != nil {
		return i.signal(d)
	}
	if c, ok := fn.(*Closure); ok {
		return i.callClosure(c, args)
	}
	return lumen.Null{}
}

func (i *Interpreter) callClosure(c *Closure, args []lumen.Value) lumen.Value {
	if i.depth >= MaxStackDepth {
		return i.signal(&lumen.StackOverflow{Callee: c.Name()})
	}
	i.depth++
	defer func() { i.depth-- }()
	restore := i.enterFrame(c.env, c.module)
	defer restore()
	for k, p := range c.Fn.Params {
		var arg lumen.Value = lumen.Null{}
		if k < len(args) {
			arg = args[k]
		}
		i.bind(p.Name, arg)
	}
	return i.Eval(c.Fn.Body)
}
