// Package sfmt prints Lumen syntax trees as canonical source text.
// Reparsing the output of Program yields a tree with the same Sids as
// the input.
package sfmt

import (
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
)

const (
	precUnary  = 7
	precCallee = 8
)

func Program(p *ast.Program) string {
	c := &canon{shared: shared{formatter{tab: 2}}}
	for k, d := range p.Decls {
		if k > 0 {
			c.ret()
		}
		c.expr(d, 0)
	}
	c.ret()
	c.flush()
	return c.String()
}

func Expr(e ast.Expr) string {
	c := &canon{shared: shared{formatter{tab: 2}}}
	c.expr(e, 0)
	c.flush()
	return c.String()
}

type canon struct {
	shared
}

func (c *canon) exprs(exprs []ast.Expr) {
	for k, e := range exprs {
		if k > 0 {
			c.write(", ")
		}
		c.expr(e, 0)
	}
}

// openEnded reports whether e extends as far to the right as the parser
// allows, so that it must be parenthesized when anything follows it.
func openEnded(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Let, *ast.Assign, *ast.Fn, *ast.If, *ast.Send, *ast.Ask:
		return true
	}
	return false
}

// expr writes e as an operand that binds at least as tightly as prec.
func (c *canon) expr(e ast.Expr, prec int) {
	if prec > 0 && openEnded(e) {
		c.write("(")
		c.expr(e, 0)
		c.write(")")
		return
	}
	if c.literal(e) {
		return
	}
	switch e := e.(type) {
	case nil:
		c.write("null")
	case *ast.Var:
		c.write("%s", e.Name)
	case *ast.Let:
		c.write("let %s = ", e.Name)
		c.expr(e.Value, 0)
		if e.Body != nil {
			c.write(" in ")
			c.expr(e.Body, 0)
		}
	case *ast.Assign:
		c.write("%s = ", e.Name)
		c.expr(e.Value, 0)
	case *ast.Fn:
		c.write("fn")
		if e.Name != "" {
			c.write(" %s", e.Name)
		}
		c.params(e.Params)
		if e.Ret != "" {
			c.write(": %s", e.Ret)
		}
		c.raises(e.Effects)
		c.write(" = ")
		c.expr(e.Body, 0)
	case *ast.Call:
		c.expr(e.Callee, precCallee)
		c.write("(")
		c.exprs(e.Args)
		c.write(")")
	case *ast.Unary:
		parens := prec >= precCallee
		c.maybewrite("(", parens)
		c.write("%s", e.Op)
		if u, ok := e.Operand.(*ast.Unary); ok && u.Op == "-" {
			c.write("(")
			c.expr(u, 0)
			c.write(")")
		} else {
			c.expr(e.Operand, precUnary)
		}
		c.maybewrite(")", parens)
	case *ast.Binary:
		p := parser.Precedence(e.Op)
		parens := p < prec
		c.maybewrite("(", parens)
		c.expr(e.LHS, p)
		c.write(" %s ", e.Op)
		c.expr(e.RHS, p+1)
		c.maybewrite(")", parens)
	case *ast.If:
		c.write("if ")
		c.expr(e.Cond, 0)
		c.write(" then ")
		// An inner if without else would capture our else.
		if inner, ok := e.Then.(*ast.If); ok && inner.Else == nil && e.Else != nil {
			c.expr(inner, 1)
		} else {
			c.expr(e.Then, 0)
		}
		if e.Else != nil {
			c.write(" else ")
			c.expr(e.Else, 0)
		}
	case *ast.Block:
		c.block(e.Stmts)
	case *ast.Match:
		c.write("match ")
		c.expr(e.Scrutinee, 0)
		c.open(" {")
		for _, cs := range e.Cases {
			c.ret()
			c.pattern(cs.Pattern)
			if cs.Guard != nil {
				c.write(" if ")
				c.expr(cs.Guard, 0)
			}
			c.write(" -> ")
			c.expr(cs.Body, 0)
		}
		c.close()
		c.ret()
		c.write("}")
	case *ast.Ctor:
		c.write("%s", e.Name)
		if len(e.Args) > 0 {
			c.write("(")
			c.exprs(e.Args)
			c.write(")")
		}
	case *ast.RecordLit:
		c.write("{")
		for k, f := range e.Fields {
			if k > 0 {
				c.write(", ")
			}
			c.write("%s: ", f.Name)
			c.expr(f.Value, 0)
		}
		c.write("}")
	case *ast.TupleLit:
		c.write("(")
		c.exprs(e.Elems)
		if len(e.Elems) == 1 {
			c.write(",")
		}
		c.write(")")
	case *ast.ListLit:
		c.write("[")
		c.exprs(e.Elems)
		c.write("]")
	case *ast.PatternOr:
		c.pattern(e)
	case *ast.EffectCall:
		c.write("%s.%s(", e.Effect, e.Op)
		c.exprs(e.Args)
		c.write(")")
	case *ast.Program:
		for k, d := range e.Decls {
			if k > 0 {
				c.ret()
			}
			c.expr(d, 0)
		}
	case *ast.ModuleDecl:
		c.write("module %s", e.Name)
	case *ast.EffectDecl:
		c.write("effect %s", e.Name)
	case *ast.EnumDecl:
		c.write("enum %s = ", e.Name)
		for k, v := range e.Variants {
			if k > 0 {
				c.write(" | ")
			}
			c.write("%s", v.Name)
			if len(v.Params) > 0 {
				c.write("(")
				c.names(v.Params)
				c.write(")")
			}
		}
	case *ast.ActorDecl:
		c.write("actor %s(", e.Name)
		if e.Param != nil {
			c.param(*e.Param)
		}
		c.write(")")
		c.raises(e.Effects)
		c.write(" = ")
		c.expr(e.Body, 0)
	case *ast.ActorDeclNew:
		c.write("actor %s", e.Name)
		c.raises(e.Effects)
		c.open(" {")
		for _, s := range e.State {
			c.ret()
			c.write("state %s", s.Name)
			if s.Type != "" {
				c.write(": %s", s.Type)
			}
			c.write(" = ")
			c.expr(s.Init, 0)
		}
		for _, h := range e.Handlers {
			c.ret()
			c.write("on ")
			c.pattern(h.Pattern)
			if h.Guard != nil {
				c.write(" if ")
				c.expr(h.Guard, 0)
			}
			if h.Reply != "" {
				c.write(" reply %s", h.Reply)
			}
			c.write(" -> ")
			c.expr(h.Body, 0)
		}
		c.close()
		c.ret()
		c.write("}")
	case *ast.Spawn:
		c.write("spawn %s", e.Actor)
	case *ast.Send:
		c.write("send ")
		c.expr(e.Actor, 1)
		c.write(", ")
		c.expr(e.Message, 0)
	case *ast.Ask:
		c.write("ask ")
		c.expr(e.Actor, 1)
		c.write(", ")
		if e.Timeout != nil {
			c.expr(e.Message, 1)
			c.write(", %d", *e.Timeout)
		} else {
			c.expr(e.Message, 0)
		}
	case *ast.StoreDecl:
		c.write("store %s", e.Name)
		if e.Schema != "" {
			c.write(": %s", e.Schema)
		}
		c.write(" = %q", e.Config)
	case *ast.QueryDecl:
		c.write("query %s = %s", e.Name, e.Source)
		if e.Where != nil {
			c.write(" where ")
			c.expr(e.Where, 0)
		}
		if len(e.Select) > 0 {
			c.write(" select ")
			c.names(e.Select)
		}
	default:
		c.write("null")
	}
}

func (c *canon) block(stmts []ast.Expr) {
	c.open("{")
	for _, s := range stmts {
		c.ret()
		c.expr(s, 0)
	}
	c.close()
	c.ret()
	c.write("}")
}

// pattern writes a pattern.  Alternatives group to the left, so a right
// operand that is itself an alternative needs parentheses.
func (c *canon) pattern(e ast.Expr) {
	or, ok := e.(*ast.PatternOr)
	if !ok {
		c.expr(e, 0)
		return
	}
	c.pattern(or.Left)
	c.write(" | ")
	if _, ok := or.Right.(*ast.PatternOr); ok {
		c.write("(")
		c.pattern(or.Right)
		c.write(")")
	} else {
		c.pattern(or.Right)
	}
}

func (c *canon) maybewrite(s string, do bool) {
	if do {
		c.write("%s", s)
	}
}
