// Package match implements structural pattern matching of runtime values
// against pattern syntax, as used by match expressions and by actor
// handler selection.
package match

import (
	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
)

// Evaluator computes the value of a pattern that is compared by equality
// rather than by structure, e.g., a literal.
type Evaluator interface {
	Eval(ast.Expr) lumen.Value
}

// Bindings are the names bound by a successful match in the order the
// pattern binds them.
type Bindings []lumen.Field

func (b Bindings) Lookup(name string) (lumen.Value, bool) {
	for _, f := range b {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Match matches value against pattern.  A name bound twice by one pattern
// must be bound to equal values or the match fails.
func Match(pattern ast.Expr, value lumen.Value, eval Evaluator) (Bindings, bool) {
	m := matcher{eval: eval}
	if !m.match(pattern, value) {
		return nil, false
	}
	return m.binds, true
}

type matcher struct {
	eval  Evaluator
	binds Bindings
}

func (m *matcher) bind(name string, val lumen.Value) bool {
	if prev, ok := m.binds.Lookup(name); ok {
		return lumen.Equal(prev, val)
	}
	m.binds = append(m.binds, lumen.Field{Name: name, Value: val})
	return true
}

func (m *matcher) match(pattern ast.Expr, val lumen.Value) bool {
	switch p := pattern.(type) {
	case nil:
		return false
	case *ast.Var:
		if p.Name == "_" || p.Name == "*" {
			return true
		}
		return m.bind(p.Name, val)
	case *ast.Ctor:
		c, ok := val.(*lumen.Ctor)
		if !ok || c.Tag != p.Name || len(c.Values) != len(p.Args) {
			return false
		}
		for k, arg := range p.Args {
			if !m.match(arg, c.Values[k]) {
				return false
			}
		}
		return true
	case *ast.RecordLit:
		// Fields the pattern does not name are ignored.
		rec, ok := val.(lumen.Record)
		if !ok {
			return false
		}
		for _, f := range p.Fields {
			v, ok := rec.Get(f.Name)
			if !ok || !m.match(f.Value, v) {
				return false
			}
		}
		return true
	case *ast.TupleLit:
		return m.sequence(p.Elems, val)
	case *ast.ListLit:
		return m.sequence(p.Elems, val)
	case *ast.PatternOr:
		// Bindings from a failed left side must not leak into the right.
		saved := len(m.binds)
		if m.match(p.Left, val) {
			return true
		}
		m.binds = m.binds[:saved]
		return m.match(p.Right, val)
	}
	return lumen.Equal(m.eval.Eval(pattern), val)
}

func (m *matcher) sequence(elems []ast.Expr, val lumen.Value) bool {
	var vals []lumen.Value
	switch v := val.(type) {
	case lumen.Tuple:
		vals = v
	case lumen.List:
		vals = v
	default:
		return false
	}
	if len(vals) != len(elems) {
		return false
	}
	for k, e := range elems {
		if !m.match(e, vals[k]) {
			return false
		}
	}
	return true
}
