package interp

import (
	"strings"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/runtime/effect"
	"github.com/colin-oos/lumen-sub000/runtime/match"
)

// Eval evaluates e in the current scope.  Every node evaluated is first
// recorded in the trace.  Node kinds with no runtime meaning evaluate to
// null.
func (i *Interpreter) Eval(e ast.Expr) lumen.Value {
	if e == nil {
		return lumen.Null{}
	}
	i.trace.Record(e.SID(), ast.KindOf(e))
	switch e := e.(type) {
	case *ast.LitNum:
		return lumen.Int(e.Value)
	case *ast.LitFloat:
		return lumen.Float(e.Value)
	case *ast.LitText:
		return lumen.Text(e.Value)
	case *ast.LitBool:
		return lumen.NewBool(e.Value)
	case *ast.LitNull:
		return lumen.Null{}
	case *ast.Var:
		return i.evalVar(e.Name)
	case *ast.Let:
		val := i.Eval(e.Value)
		if e.Body == nil {
			i.bind(e.Name, val)
			return val
		}
		saved := i.env
		i.bind(e.Name, val)
		out := i.Eval(e.Body)
		i.env = saved
		return out
	case *ast.Assign:
		val := i.Eval(e.Value)
		i.assign(e.Name, val)
		return val
	case *ast.Fn:
		c := i.closure(e)
		if e.Name != "" {
			// Bind first so the body can call itself.
			i.bind(e.Name, c)
			c.env = i.snapshot()
		}
		return c
	case *ast.Call:
		callee := i.Eval(e.Callee)
		return i.call(callee, i.evalList(e.Args))
	case *ast.Unary:
		return i.unary(e.Op, i.Eval(e.Operand))
	case *ast.Binary:
		return i.evalBinary(e)
	case *ast.If:
		saved := i.env
		var out lumen.Value = lumen.Null{}
		if lumen.Truthy(i.Eval(e.Cond)) {
			out = i.Eval(e.Then)
		} else if e.Else != nil {
			out = i.Eval(e.Else)
		}
		i.env = saved
		return out
	case *ast.Block:
		saved := i.env
		var out lumen.Value = lumen.Null{}
		for _, stmt := range e.Stmts {
			out = i.Eval(stmt)
		}
		i.env = saved
		return out
	case *ast.Match:
		return i.evalMatch(e)
	case *ast.Ctor:
		if len(e.Args) == 0 {
			return lumen.NewCtor(e.Name)
		}
		return lumen.NewCtor(e.Name, i.evalList(e.Args)...)
	case *ast.RecordLit:
		rec := make(lumen.Record, 0, len(e.Fields))
		for _, f := range e.Fields {
			rec = rec.With(f.Name, i.Eval(f.Value))
		}
		return rec
	case *ast.TupleLit:
		return lumen.Tuple(i.evalList(e.Elems))
	case *ast.ListLit:
		return lumen.List(i.evalList(e.Elems))
	case *ast.EffectCall:
		return i.evalEffectCall(e)
	case *ast.Program:
		return i.evalProgram(e)
	case *ast.ModuleDecl:
		i.module = e.Name
		return lumen.Null{}
	case *ast.ActorDecl:
		i.registerParamActor(e)
		return lumen.Text(e.Name)
	case *ast.ActorDeclNew:
		i.registerHandlerActor(e)
		return lumen.Text(e.Name)
	case *ast.Spawn:
		i.mailbox(e.Actor)
		return lumen.Text(e.Actor)
	case *ast.Send:
		i.send(i.actorRef(i.Eval(e.Actor)), i.Eval(e.Message), nil)
		return lumen.Null{}
	case *ast.Ask:
		return i.evalAsk(e)
	case *ast.StoreDecl:
		return i.evalStore(e)
	case *ast.QueryDecl:
		return i.evalQuery(e)
	}
	// EnumDecl, EffectDecl, and PatternOr outside a pattern.
	return lumen.Null{}
}

func (i *Interpreter) evalList(exprs []ast.Expr) []lumen.Value {
	vals := make([]lumen.Value, 0, len(exprs))
	for _, e := range exprs {
		vals = append(vals, i.Eval(e))
	}
	return vals
}

func (i *Interpreter) lookup(name string) (lumen.Value, bool) {
	if b, ok := i.env.lookup(name); ok {
		return b.value, true
	}
	if v, ok := i.globals[name]; ok {
		return v, true
	}
	if i.module != "" {
		if v, ok := i.globals[i.module+"."+name]; ok {
			return v, true
		}
	}
	return nil, false
}

// evalVar resolves name.  A dotted name that is not itself bound is read
// as field access on a record, e.g., "row.id".
func (i *Interpreter) evalVar(name string) lumen.Value {
	if v, ok := i.lookup(name); ok {
		return v
	}
	if head, path, ok := strings.Cut(name, "."); ok {
		if v, ok := i.lookup(head); ok {
			if v, ok := fieldPath(v, path); ok {
				return v
			}
		}
	}
	return i.signal(&lumen.Unbound{Name: name})
}

func fieldPath(v lumen.Value, path string) (lumen.Value, bool) {
	for _, name := range strings.Split(path, ".") {
		rec, ok := v.(lumen.Record)
		if !ok {
			return nil, false
		}
		if v, ok = rec.Get(name); !ok {
			return nil, false
		}
	}
	return v, true
}

func (i *Interpreter) bindAll(binds match.Bindings) {
	for _, b := range binds {
		i.bind(b.Name, b.Value)
	}
}

func (i *Interpreter) evalMatch(m *ast.Match) lumen.Value {
	val := i.Eval(m.Scrutinee)
	for _, c := range m.Cases {
		binds, ok := match.Match(c.Pattern, val, i)
		if !ok {
			continue
		}
		saved := i.env
		i.bindAll(binds)
		if c.Guard != nil && !i.guard(c.Guard) {
			i.env = saved
			continue
		}
		out := i.Eval(c.Body)
		i.env = saved
		return out
	}
	return lumen.Null{}
}

// guard reports whether a case or handler guard holds.  A guard that
// could perform an effect never holds and is not evaluated.
func (i *Interpreter) guard(e ast.Expr) bool {
	return effect.IsPure(e) && lumen.Truthy(i.Eval(e))
}

func (i *Interpreter) evalEffectCall(e *ast.EffectCall) lumen.Value {
	if d := i.gate.Check(e.Effect); d != nil {
		return i.signal(d)
	}
	args := i.evalList(e.Args)
	if i.host == nil {
		return i.signal(&lumen.AdapterError{Op: e.Effect + "." + e.Op, Err: "no effect host"})
	}
	out := i.host.Invoke(i.ctx, e.Effect, e.Op, args)
	if s, ok := out.(lumen.Signal); ok {
		i.signal(s)
	}
	return out
}
