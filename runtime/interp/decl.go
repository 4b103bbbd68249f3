package interp

import (
	"errors"
	"strings"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"go.uber.org/zap"
)

// evalProgram evaluates the declarations of p in order, drains the
// mailboxes, and returns the value of the last declaration that is not
// an actor declaration or a send.
func (i *Interpreter) evalProgram(p *ast.Program) lumen.Value {
	var last lumen.Value = lumen.Null{}
	for _, d := range p.Decls {
		v := i.decl(d)
		switch d.(type) {
		case *ast.ActorDecl, *ast.ActorDeclNew, *ast.Send:
		default:
			last = v
		}
	}
	i.drain(nil)
	return last
}

// decl evaluates a top-level declaration.  Named functions are bound
// globally, qualified by the active module, so that functions may refer
// to each other regardless of declaration order.
func (i *Interpreter) decl(d ast.Expr) lumen.Value {
	fn, ok := d.(*ast.Fn)
	if !ok || fn.Name == "" {
		return i.Eval(d)
	}
	i.trace.Record(fn.SID(), ast.KindOf(fn))
	c := i.closure(fn)
	i.globals[i.qualify(fn.Name)] = c
	return c
}

func (i *Interpreter) qualify(name string) string {
	if i.module == "" || strings.Contains(name, ".") {
		return name
	}
	return i.module + "." + name
}

var errNoHost = errors.New("no store loader")

func (i *Interpreter) evalStore(s *ast.StoreDecl) lumen.Value {
	rows, err := lumen.List(nil), errNoHost
	if i.host != nil {
		rows, err = i.host.LoadStore(i.ctx, s.Name, s.Config)
	}
	if err != nil {
		i.logger.Warn("store load failed", zap.String("store", s.Name), zap.String("config", s.Config), zap.Error(err))
		i.signal(&lumen.AdapterError{Op: "store." + s.Name, Err: err.Error()})
		rows = lumen.List{}
	}
	if rows == nil {
		rows = lumen.List{}
	}
	i.globals[s.Name] = rows
	return rows
}

// evalQuery filters the rows of the query's source.  The predicate sees
// the fields of each row as variables over the current scope.
func (i *Interpreter) evalQuery(q *ast.QueryDecl) lumen.Value {
	var rows lumen.List
	switch src := i.evalVar(q.Source).(type) {
	case lumen.List:
		rows = src
	case lumen.Signal:
	default:
		i.logger.Debug("query source is not a list", zap.String("query", q.Name), zap.String("source", q.Source))
	}
	out := lumen.List{}
	for _, row := range rows {
		restore := i.enterFrame(i.env, i.module)
		if rec, ok := row.(lumen.Record); ok {
			for _, f := range rec {
				i.bind(f.Name, f.Value)
			}
		}
		keep := q.Where == nil || lumen.Truthy(i.Eval(q.Where))
		restore()
		if keep {
			out = append(out, project(row, q.Select))
		}
	}
	i.globals[q.Name] = out
	return out
}

// project returns the named fields of row in the given order.  Missing
// fields are null.
func project(row lumen.Value, fields []string) lumen.Value {
	if len(fields) == 0 {
		return row
	}
	rec, _ := row.(lumen.Record)
	out := make(lumen.Record, 0, len(fields))
	for _, name := range fields {
		v, ok := rec.Get(name)
		if !ok {
			v = lumen.Null{}
		}
		out = append(out, lumen.Field{Name: name, Value: v})
	}
	return out
}
