// Package check reports effect and declaration errors in a Lumen program
// without running it.  The checks mirror the dynamic effect gate so that
// most denials can be found before execution.
package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/sid"
)

type Diagnostic struct {
	Sid string  `json:"sid"`
	Loc ast.Loc `json:"loc"`
	Msg string  `json:"msg"`
}

func (d Diagnostic) Error() string {
	return d.Msg
}

type checker struct {
	fns      map[string]*ast.Fn
	variants map[string]ast.Variant
	actors   map[string]bool
	diags    []Diagnostic
}

// Check returns the diagnostics for p in source order.  The program is
// stamped with Sids if it has not been already.
func Check(p *ast.Program) []Diagnostic {
	if sid.Of(p) == "" {
		sid.Assign(p)
	}
	c := &checker{
		fns:      make(map[string]*ast.Fn),
		variants: make(map[string]ast.Variant),
		actors:   make(map[string]bool),
	}
	c.declare(p)
	var module string
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ast.ModuleDecl:
			module = d.Name
		case *ast.Fn:
			c.body(d.Body, qualify(module, d.Name), d.Effects)
		case *ast.ActorDecl:
			c.body(d.Body, "actor "+d.Name, d.Effects)
		case *ast.ActorDeclNew:
			for _, s := range d.State {
				c.body(s.Init, "actor "+d.Name, d.Effects)
			}
			for _, h := range d.Handlers {
				if h.Guard != nil {
					c.guard(h.Guard, d.Name)
				}
				c.body(h.Pattern, "actor "+d.Name, d.Effects)
				c.body(h.Body, "actor "+d.Name, d.Effects)
			}
		default:
			c.body(d, "", nil)
		}
	}
	slices.SortStableFunc(c.diags, func(a, b Diagnostic) int {
		return a.Loc.First - b.Loc.First
	})
	return c.diags
}

func qualify(module, name string) string {
	if module == "" || name == "" {
		return name
	}
	return module + "." + name
}

func (c *checker) declare(p *ast.Program) {
	var module string
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ast.ModuleDecl:
			module = d.Name
		case *ast.Fn:
			if d.Name != "" {
				c.fns[qualify(module, d.Name)] = d
			}
		case *ast.EnumDecl:
			for _, v := range d.Variants {
				c.variants[v.Name] = v
			}
		case *ast.ActorDecl:
			c.actors[d.Name] = true
		case *ast.ActorDeclNew:
			c.actors[d.Name] = true
		}
	}
}

func (c *checker) errorf(e ast.Expr, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Sid: sid.Of(e),
		Loc: ast.NewLoc(e.Pos(), e.End()),
		Msg: fmt.Sprintf(format, args...),
	})
}

// body checks the expressions executed on behalf of owner, which runs
// with the given effects.  An empty owner is top-level code, whose calls
// are checked only at run time.  Nested functions are checked against
// their own effect declarations.
func (c *checker) body(e ast.Expr, owner string, effects []string) {
	ast.Walk(e, func(e ast.Expr) bool {
		switch e := e.(type) {
		case *ast.Fn:
			name := e.Name
			if name == "" {
				name = "fn"
			}
			c.body(e.Body, name, e.Effects)
			return false
		case *ast.EffectCall:
			if owner != "" && !slices.Contains(effects, e.Effect) {
				c.errorf(e, "%s.%s requires effect %s, which %s does not declare", e.Effect, e.Op, e.Effect, owner)
			}
		case *ast.Call:
			if owner == "" {
				break
			}
			v, ok := e.Callee.(*ast.Var)
			if !ok {
				break
			}
			if fn, ok := c.fns[v.Name]; ok {
				if missing := difference(fn.Effects, effects); len(missing) > 0 {
					c.errorf(e, "call to %s raises %s, which %s does not declare", v.Name, strings.Join(missing, ", "), owner)
				}
			}
		case *ast.Ctor:
			c.ctor(e)
		case *ast.Spawn:
			if !c.actors[e.Actor] {
				c.errorf(e, "spawn of undeclared actor %s", e.Actor)
			}
		}
		return true
	})
}

func (c *checker) guard(e ast.Expr, actor string) {
	ast.Walk(e, func(e ast.Expr) bool {
		if call, ok := e.(*ast.EffectCall); ok {
			c.errorf(call, "handler guard in actor %s performs effect %s and will never match", actor, call.Effect)
			return false
		}
		return true
	})
}

// ctor checks constructor tags against the declared enums.  Programs
// that declare no enums use bare tags as message names, so they are not
// checked.
func (c *checker) ctor(e *ast.Ctor) {
	if len(c.variants) == 0 || c.actors[e.Name] {
		return
	}
	v, ok := c.variants[e.Name]
	if !ok {
		msg := fmt.Sprintf("unknown constructor %s", e.Name)
		if s := c.suggest(e.Name); s != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", s)
		}
		c.errorf(e, "%s", msg)
		return
	}
	if len(v.Params) != len(e.Args) {
		c.errorf(e, "constructor %s takes %d argument(s), found %d", e.Name, len(v.Params), len(e.Args))
	}
}

func (c *checker) suggest(name string) string {
	var best string
	bestDist := max(2, len(name)/3) + 1
	for v := range c.variants {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(v))
		if d < bestDist || d == bestDist && v < best {
			best, bestDist = v, d
		}
	}
	return best
}

func difference(need, have []string) []string {
	var out []string
	for _, e := range need {
		if !slices.Contains(have, e) {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}
