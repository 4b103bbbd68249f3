package ast

// Children returns the direct subexpressions of e in evaluation order.
// Match cases and actor handlers contribute their pattern, guard, and body
// in turn.
func Children(e Expr) []Expr {
	var out []Expr
	add := func(exprs ...Expr) {
		for _, e := range exprs {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	switch e := e.(type) {
	case *Let:
		add(e.Value, e.Body)
	case *Assign:
		add(e.Value)
	case *Fn:
		add(e.Body)
	case *Call:
		add(e.Callee)
		add(e.Args...)
	case *Unary:
		add(e.Operand)
	case *Binary:
		add(e.LHS, e.RHS)
	case *If:
		add(e.Cond, e.Then, e.Else)
	case *Block:
		add(e.Stmts...)
	case *Match:
		add(e.Scrutinee)
		for _, c := range e.Cases {
			add(c.Pattern, c.Guard, c.Body)
		}
	case *Ctor:
		add(e.Args...)
	case *RecordLit:
		for _, f := range e.Fields {
			add(f.Value)
		}
	case *TupleLit:
		add(e.Elems...)
	case *ListLit:
		add(e.Elems...)
	case *PatternOr:
		add(e.Left, e.Right)
	case *EffectCall:
		add(e.Args...)
	case *Program:
		add(e.Decls...)
	case *ActorDecl:
		add(e.Body)
	case *ActorDeclNew:
		for _, s := range e.State {
			add(s.Init)
		}
		for _, h := range e.Handlers {
			add(h.Pattern, h.Guard, h.Body)
		}
	case *Send:
		add(e.Actor, e.Message)
	case *Ask:
		add(e.Actor, e.Message)
	case *QueryDecl:
		add(e.Where)
	}
	return out
}

// Walk calls visit for e and then, if visit returns true, for each of its
// descendants in pre-order.
func Walk(e Expr, visit func(Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, visit)
	}
}

// Rewrite rebuilds e bottom-up, replacing each node n with f(n).  Nodes
// whose descendants are left unchanged by f are passed to f as is, so
// untouched subtrees are shared between the input and the output.  Nodes
// that are rebuilt are shallow copies of the originals and keep their old
// Sids until they are stamped again.
func Rewrite(e Expr, f func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	var changed bool
	sub := func(c Expr) Expr {
		if c == nil {
			return nil
		}
		r := Rewrite(c, f)
		if r != c {
			changed = true
		}
		return r
	}
	subs := func(exprs []Expr) []Expr {
		if exprs == nil {
			return nil
		}
		out := make([]Expr, len(exprs))
		for k, c := range exprs {
			out[k] = sub(c)
		}
		return out
	}
	switch e := e.(type) {
	case *Let:
		value, body := sub(e.Value), sub(e.Body)
		if changed {
			c := *e
			c.Value, c.Body = value, body
			return f(&c)
		}
	case *Assign:
		value := sub(e.Value)
		if changed {
			c := *e
			c.Value = value
			return f(&c)
		}
	case *Fn:
		body := sub(e.Body)
		if changed {
			c := *e
			c.Body = body
			return f(&c)
		}
	case *Call:
		callee, args := sub(e.Callee), subs(e.Args)
		if changed {
			c := *e
			c.Callee, c.Args = callee, args
			return f(&c)
		}
	case *Unary:
		operand := sub(e.Operand)
		if changed {
			c := *e
			c.Operand = operand
			return f(&c)
		}
	case *Binary:
		lhs, rhs := sub(e.LHS), sub(e.RHS)
		if changed {
			c := *e
			c.LHS, c.RHS = lhs, rhs
			return f(&c)
		}
	case *If:
		cond, then, els := sub(e.Cond), sub(e.Then), sub(e.Else)
		if changed {
			c := *e
			c.Cond, c.Then, c.Else = cond, then, els
			return f(&c)
		}
	case *Block:
		stmts := subs(e.Stmts)
		if changed {
			c := *e
			c.Stmts = stmts
			return f(&c)
		}
	case *Match:
		scrutinee := sub(e.Scrutinee)
		cases := make([]Case, len(e.Cases))
		for k, cs := range e.Cases {
			cases[k] = Case{Pattern: sub(cs.Pattern), Guard: sub(cs.Guard), Body: sub(cs.Body), Loc: cs.Loc}
		}
		if changed {
			c := *e
			c.Scrutinee, c.Cases = scrutinee, cases
			return f(&c)
		}
	case *Ctor:
		args := subs(e.Args)
		if changed {
			c := *e
			c.Args = args
			return f(&c)
		}
	case *RecordLit:
		fields := make([]RecordField, len(e.Fields))
		for k, fld := range e.Fields {
			fields[k] = RecordField{Name: fld.Name, Value: sub(fld.Value)}
		}
		if changed {
			c := *e
			c.Fields = fields
			return f(&c)
		}
	case *TupleLit:
		elems := subs(e.Elems)
		if changed {
			c := *e
			c.Elems = elems
			return f(&c)
		}
	case *ListLit:
		elems := subs(e.Elems)
		if changed {
			c := *e
			c.Elems = elems
			return f(&c)
		}
	case *PatternOr:
		left, right := sub(e.Left), sub(e.Right)
		if changed {
			c := *e
			c.Left, c.Right = left, right
			return f(&c)
		}
	case *EffectCall:
		args := subs(e.Args)
		if changed {
			c := *e
			c.Args = args
			return f(&c)
		}
	case *Program:
		decls := subs(e.Decls)
		if changed {
			c := *e
			c.Decls = decls
			return f(&c)
		}
	case *ActorDecl:
		body := sub(e.Body)
		if changed {
			c := *e
			c.Body = body
			return f(&c)
		}
	case *ActorDeclNew:
		state := make([]StateSlot, len(e.State))
		for k, s := range e.State {
			s.Init = sub(s.Init)
			state[k] = s
		}
		handlers := make([]Handler, len(e.Handlers))
		for k, h := range e.Handlers {
			h.Pattern, h.Guard, h.Body = sub(h.Pattern), sub(h.Guard), sub(h.Body)
			handlers[k] = h
		}
		if changed {
			c := *e
			c.State, c.Handlers = state, handlers
			return f(&c)
		}
	case *Send:
		actor, msg := sub(e.Actor), sub(e.Message)
		if changed {
			c := *e
			c.Actor, c.Message = actor, msg
			return f(&c)
		}
	case *Ask:
		actor, msg := sub(e.Actor), sub(e.Message)
		if changed {
			c := *e
			c.Actor, c.Message = actor, msg
			return f(&c)
		}
	case *QueryDecl:
		where := sub(e.Where)
		if changed {
			c := *e
			c.Where = where
			return f(&c)
		}
	}
	return f(e)
}
