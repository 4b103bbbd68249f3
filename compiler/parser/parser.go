package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/colin-oos/lumen-sub000/compiler/ast"
)

// BuiltinEffects are the effects known to every program.  An effect
// declared with "effect name" is added to this set for the file that
// declares it.
var BuiltinEffects = []string{"db", "fs", "http", "io", "net", "time"}

type syntaxError struct {
	msg string
	pos int
}

func (e *syntaxError) Error() string { return e.msg }

type parser struct {
	items   []item
	k       int
	tok     token
	lit     string
	pos     int
	prevEnd int
	effects map[string]bool
}

func newParser(items []item, effects []string) *parser {
	p := &parser{items: items, effects: make(map[string]bool)}
	for _, e := range BuiltinEffects {
		p.effects[e] = true
	}
	for _, e := range effects {
		p.effects[e] = true
	}
	// Effect declarations apply to the whole file regardless of where
	// they appear.
	for k := 0; k+1 < len(items); k++ {
		if items[k].tok == tokEffect && items[k+1].tok == tokIdent {
			p.effects[items[k+1].lit] = true
		}
	}
	p.set()
	return p
}

func (p *parser) set() {
	it := p.items[p.k]
	p.tok, p.lit, p.pos = it.tok, it.lit, it.pos
}

func (p *parser) next() {
	if p.tok == tokEOF {
		return
	}
	p.prevEnd = p.items[p.k].end
	p.k++
	p.set()
}

// peek returns the token after the current one.
func (p *parser) peek() token {
	if p.k+1 < len(p.items) {
		return p.items[p.k+1].tok
	}
	return tokEOF
}

// peekOverNewline returns the first token at or after the current one that
// is not a newline, along with its index.
func (p *parser) peekOverNewline() (token, int) {
	k := p.k
	for p.items[k].tok == tokNewline {
		k++
	}
	return p.items[k].tok, k
}

func (p *parser) got(tok token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// gotOverNewline is like got but lets tok begin the following line.
func (p *parser) gotOverNewline(tok token) bool {
	if p.got(tok) {
		return true
	}
	if p.tok == tokNewline {
		if t, k := p.peekOverNewline(); t == tok {
			p.k = k
			p.set()
			p.next()
			return true
		}
	}
	return false
}

func (p *parser) want(tok token) {
	if !p.got(tok) {
		p.errorf("expected %s, found %s", tok, p.describe())
	}
}

func (p *parser) skipNewlines() {
	for p.tok == tokNewline {
		p.next()
	}
}

func (p *parser) skipSeparators() {
	for p.tok == tokNewline || p.tok == tokSemi {
		p.next()
	}
}

// endStatement consumes the separator after a statement.  A statement may
// also end at the close token of its enclosing list.
func (p *parser) endStatement(close token) {
	if p.tok == close {
		return
	}
	if p.tok != tokNewline && p.tok != tokSemi {
		p.errorf("expected newline or ';' after statement, found %s", p.describe())
	}
	p.skipSeparators()
}

func (p *parser) describe() string {
	switch p.tok {
	case tokIdent, tokInt, tokFloat, tokText:
		return fmt.Sprintf("%s %s", p.tok, p.lit)
	}
	return fmt.Sprintf("%q", p.tok.String())
}

func (p *parser) errorf(format string, args ...any) {
	panic(&syntaxError{msg: fmt.Sprintf(format, args...), pos: p.pos})
}

func (p *parser) loc(start int) ast.Loc {
	return ast.NewLoc(start, p.prevEnd-1)
}

func (p *parser) ident() string {
	name := p.lit
	p.want(tokIdent)
	return name
}

func (p *parser) qname() string {
	name := p.ident()
	for p.tok == tokDot && p.peek() == tokIdent {
		p.next()
		name += "." + p.ident()
	}
	return name
}

func (p *parser) program() *ast.Program {
	start := p.pos
	var decls []ast.Expr
	p.skipSeparators()
	for p.tok != tokEOF {
		decls = append(decls, p.decl())
		p.endStatement(tokEOF)
	}
	return &ast.Program{Kind: "Program", Decls: decls, Loc: p.loc(start)}
}

func (p *parser) decl() ast.Expr {
	start := p.pos
	switch p.tok {
	case tokModule:
		p.next()
		return &ast.ModuleDecl{Kind: "ModuleDecl", Name: p.qname(), Loc: p.loc(start)}
	case tokEffect:
		p.next()
		return &ast.EffectDecl{Kind: "EffectDecl", Name: p.ident(), Loc: p.loc(start)}
	case tokEnum:
		return p.enumDecl()
	case tokActor:
		return p.actorDecl()
	case tokStore:
		return p.storeDecl()
	case tokQuery:
		return p.queryDecl()
	}
	return p.expr()
}

func (p *parser) enumDecl() ast.Expr {
	start := p.pos
	p.want(tokEnum)
	name := p.ident()
	p.want(tokAssign)
	p.skipNewlines()
	variants := []ast.Variant{p.variant()}
	for p.gotOverNewline(tokBar) {
		p.skipNewlines()
		variants = append(variants, p.variant())
	}
	return &ast.EnumDecl{Kind: "EnumDecl", Name: name, Variants: variants, Loc: p.loc(start)}
}

func (p *parser) variant() ast.Variant {
	v := ast.Variant{Name: p.ident()}
	if p.got(tokLparen) {
		v.Params = append(v.Params, p.typ())
		for p.got(tokComma) {
			v.Params = append(v.Params, p.typ())
		}
		p.want(tokRparen)
	}
	return v
}

// typ parses a type name such as Int or List<Record>.  Types are carried
// through the tree as canonical text.
func (p *parser) typ() string {
	name := p.qname()
	if p.got(tokLss) {
		args := []string{p.typ()}
		for p.got(tokComma) {
			args = append(args, p.typ())
		}
		p.want(tokGtr)
		name += "<" + strings.Join(args, ", ") + ">"
	}
	return name
}

func (p *parser) raises() []string {
	if !p.got(tokRaises) {
		return nil
	}
	effects := []string{p.ident()}
	for p.got(tokComma) {
		effects = append(effects, p.ident())
	}
	return effects
}

func (p *parser) params() []ast.Param {
	p.want(tokLparen)
	var params []ast.Param
	if p.tok != tokRparen {
		params = append(params, p.param())
		for p.got(tokComma) {
			params = append(params, p.param())
		}
	}
	p.want(tokRparen)
	return params
}

func (p *parser) param() ast.Param {
	param := ast.Param{Name: p.ident()}
	if p.got(tokColon) {
		param.Type = p.typ()
	}
	return param
}

// fn parses both named declarations and lambdas.
func (p *parser) fn() ast.Expr {
	start := p.pos
	p.want(tokFn)
	var name string
	if p.tok == tokIdent {
		name = p.qname()
	}
	params := p.params()
	var ret string
	if p.got(tokColon) {
		ret = p.typ()
	}
	effects := p.raises()
	p.want(tokAssign)
	p.skipNewlines()
	body := p.expr()
	return &ast.Fn{
		Kind:    "Fn",
		Name:    name,
		Params:  params,
		Ret:     ret,
		Body:    body,
		Effects: effects,
		Loc:     p.loc(start),
	}
}

func (p *parser) actorDecl() ast.Expr {
	start := p.pos
	p.want(tokActor)
	name := p.ident()
	var param *ast.Param
	hasParam := p.tok == tokLparen
	if hasParam {
		p.next()
		if p.tok != tokRparen {
			prm := p.param()
			param = &prm
		}
		p.want(tokRparen)
	}
	effects := p.raises()
	if hasParam || p.tok == tokAssign {
		p.want(tokAssign)
		p.skipNewlines()
		body := p.expr()
		return &ast.ActorDecl{
			Kind:    "ActorDecl",
			Name:    name,
			Param:   param,
			Body:    body,
			Effects: effects,
			Loc:     p.loc(start),
		}
	}
	p.want(tokLbrace)
	actor := &ast.ActorDeclNew{Kind: "ActorDeclNew", Name: name, Effects: effects}
	p.skipSeparators()
	for p.tok != tokRbrace {
		mstart := p.pos
		switch p.tok {
		case tokState:
			p.next()
			slot := ast.StateSlot{Name: p.ident()}
			if p.got(tokColon) {
				slot.Type = p.typ()
			}
			p.want(tokAssign)
			p.skipNewlines()
			slot.Init = p.expr()
			slot.Loc = p.loc(mstart)
			actor.State = append(actor.State, slot)
		case tokOn:
			p.next()
			h := ast.Handler{Pattern: p.pattern()}
			if p.got(tokIf) {
				h.Guard = p.expr()
			}
			if p.got(tokReply) {
				h.Reply = p.typ()
			}
			p.want(tokArrow)
			p.skipNewlines()
			h.Body = p.expr()
			h.Loc = p.loc(mstart)
			actor.Handlers = append(actor.Handlers, h)
		default:
			p.errorf("expected state or on in actor %s, found %s", name, p.describe())
		}
		p.endStatement(tokRbrace)
	}
	p.want(tokRbrace)
	actor.Loc = p.loc(start)
	return actor
}

func (p *parser) storeDecl() ast.Expr {
	start := p.pos
	p.want(tokStore)
	name := p.ident()
	var schema string
	if p.got(tokColon) {
		schema = p.typ()
	}
	p.want(tokAssign)
	config := p.textLit()
	return &ast.StoreDecl{Kind: "StoreDecl", Name: name, Schema: schema, Config: config, Loc: p.loc(start)}
}

func (p *parser) queryDecl() ast.Expr {
	start := p.pos
	p.want(tokQuery)
	q := &ast.QueryDecl{Kind: "QueryDecl", Name: p.ident()}
	p.want(tokAssign)
	q.Source = p.ident()
	if p.got(tokWhere) {
		q.Where = p.expr()
	}
	if p.got(tokSelect) {
		q.Select = append(q.Select, p.ident())
		for p.got(tokComma) {
			q.Select = append(q.Select, p.ident())
		}
	}
	q.Loc = p.loc(start)
	return q
}

func (p *parser) textLit() string {
	lit := p.lit
	pos := p.pos
	p.want(tokText)
	s, err := strconv.Unquote(lit)
	if err != nil {
		panic(&syntaxError{msg: "invalid text literal " + lit, pos: pos})
	}
	return s
}

func (p *parser) expr() ast.Expr {
	start := p.pos
	switch p.tok {
	case tokLet:
		p.next()
		let := &ast.Let{Kind: "Let", Name: p.ident()}
		p.want(tokAssign)
		p.skipNewlines()
		let.Value = p.expr()
		if p.gotOverNewline(tokIn) {
			p.skipNewlines()
			let.Body = p.expr()
		}
		let.Loc = p.loc(start)
		return let
	case tokIdent:
		if p.peek() == tokAssign {
			name := p.ident()
			p.next()
			p.skipNewlines()
			value := p.expr()
			return &ast.Assign{Kind: "Assign", Name: name, Value: value, Loc: p.loc(start)}
		}
	case tokFn:
		return p.fn()
	case tokIf:
		p.next()
		cond := p.expr()
		if !p.gotOverNewline(tokThen) {
			p.errorf("expected then, found %s", p.describe())
		}
		p.skipNewlines()
		e := &ast.If{Kind: "If", Cond: cond, Then: p.expr()}
		if p.gotOverNewline(tokElse) {
			p.skipNewlines()
			e.Else = p.expr()
		}
		e.Loc = p.loc(start)
		return e
	case tokMatch:
		return p.match()
	case tokSpawn:
		p.next()
		return &ast.Spawn{Kind: "Spawn", Actor: p.ident(), Loc: p.loc(start)}
	case tokSend:
		p.next()
		actor := p.binary(0)
		p.want(tokComma)
		msg := p.expr()
		return &ast.Send{Kind: "Send", Actor: actor, Message: msg, Loc: p.loc(start)}
	case tokAsk:
		p.next()
		actor := p.binary(0)
		p.want(tokComma)
		ask := &ast.Ask{Kind: "Ask", Actor: actor, Message: p.expr()}
		if p.got(tokComma) {
			lit, pos := p.lit, p.pos
			p.want(tokInt)
			ms, err := strconv.ParseInt(lit, 10, 64)
			if err != nil {
				panic(&syntaxError{msg: "invalid timeout " + lit, pos: pos})
			}
			ask.Timeout = &ms
		}
		ask.Loc = p.loc(start)
		return ask
	}
	return p.binary(0)
}

func (p *parser) match() ast.Expr {
	start := p.pos
	p.want(tokMatch)
	m := &ast.Match{Kind: "Match", Scrutinee: p.expr()}
	p.want(tokLbrace)
	p.skipSeparators()
	for p.tok != tokRbrace {
		cstart := p.pos
		c := ast.Case{Pattern: p.pattern()}
		if p.got(tokIf) {
			c.Guard = p.expr()
		}
		p.want(tokArrow)
		p.skipNewlines()
		c.Body = p.expr()
		c.Loc = p.loc(cstart)
		m.Cases = append(m.Cases, c)
		p.endStatement(tokRbrace)
	}
	p.want(tokRbrace)
	m.Loc = p.loc(start)
	return m
}

// binary parses operators by precedence climbing.  All binary operators
// are left associative.
func (p *parser) binary(prec int) ast.Expr {
	x := p.unary()
	for {
		oprec := p.tok.precedence()
		if oprec <= prec {
			return x
		}
		op := p.tok.String()
		p.next()
		p.skipNewlines()
		y := p.binary(oprec)
		x = &ast.Binary{Kind: "Binary", Op: op, LHS: x, RHS: y, Loc: p.loc(x.Pos())}
	}
}

func (p *parser) unary() ast.Expr {
	if p.tok == tokSub || p.tok == tokNot {
		start := p.pos
		op := p.tok.String()
		p.next()
		operand := p.unary()
		return &ast.Unary{Kind: "Unary", Op: op, Operand: operand, Loc: p.loc(start)}
	}
	x := p.primary()
	for p.tok == tokLparen {
		args := p.args(tokLparen, tokRparen)
		x = &ast.Call{Kind: "Call", Callee: x, Args: args, Loc: p.loc(x.Pos())}
	}
	return x
}

func (p *parser) args(open, close token) []ast.Expr {
	p.want(open)
	args := []ast.Expr{}
	if p.tok != close {
		args = append(args, p.expr())
		for p.got(tokComma) {
			args = append(args, p.expr())
		}
	}
	p.want(close)
	return args
}

func (p *parser) primary() ast.Expr {
	start := p.pos
	switch p.tok {
	case tokInt, tokFloat, tokText, tokTrue, tokFalse, tokNull:
		return p.literal()
	case tokIdent:
		name := p.qname()
		head, op, dotted := strings.Cut(name, ".")
		if !dotted && isUpper(name) {
			ctor := &ast.Ctor{Kind: "Ctor", Name: name, Args: []ast.Expr{}}
			if p.tok == tokLparen {
				ctor.Args = p.args(tokLparen, tokRparen)
			}
			ctor.Loc = p.loc(start)
			return ctor
		}
		if dotted && !strings.Contains(op, ".") && p.effects[head] && p.tok == tokLparen {
			args := p.args(tokLparen, tokRparen)
			return &ast.EffectCall{Kind: "EffectCall", Effect: head, Op: op, Args: args, Loc: p.loc(start)}
		}
		return &ast.Var{Kind: "Var", Name: name, Loc: p.loc(start)}
	case tokLparen:
		p.next()
		if p.got(tokRparen) {
			return &ast.TupleLit{Kind: "TupleLit", Elems: []ast.Expr{}, Loc: p.loc(start)}
		}
		x := p.expr()
		if p.tok != tokComma {
			p.want(tokRparen)
			return x
		}
		elems := []ast.Expr{x}
		for p.got(tokComma) && p.tok != tokRparen {
			elems = append(elems, p.expr())
		}
		p.want(tokRparen)
		return &ast.TupleLit{Kind: "TupleLit", Elems: elems, Loc: p.loc(start)}
	case tokLbrack:
		elems := p.args(tokLbrack, tokRbrack)
		return &ast.ListLit{Kind: "ListLit", Elems: elems, Loc: p.loc(start)}
	case tokLbrace:
		if p.isRecord() {
			return p.record(p.expr)
		}
		return p.block()
	case tokLet, tokFn, tokIf, tokMatch, tokSpawn, tokSend, tokAsk:
		return p.expr()
	}
	p.errorf("unexpected %s", p.describe())
	return nil
}

func (p *parser) literal() ast.Expr {
	start, lit := p.pos, p.lit
	switch p.tok {
	case tokInt:
		p.next()
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			panic(&syntaxError{msg: "integer literal out of range: " + lit, pos: start})
		}
		return &ast.LitNum{Kind: "LitNum", Value: n, Loc: p.loc(start)}
	case tokFloat:
		p.next()
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			panic(&syntaxError{msg: "invalid float literal: " + lit, pos: start})
		}
		return &ast.LitFloat{Kind: "LitFloat", Value: f, Loc: p.loc(start)}
	case tokText:
		s := p.textLit()
		return &ast.LitText{Kind: "LitText", Value: s, Loc: p.loc(start)}
	case tokTrue, tokFalse:
		p.next()
		return &ast.LitBool{Kind: "LitBool", Value: lit == "true", Loc: p.loc(start)}
	case tokNull:
		p.next()
		return &ast.LitNull{Kind: "LitNull", Loc: p.loc(start)}
	}
	p.errorf("expected literal, found %s", p.describe())
	return nil
}

// isRecord reports whether the brace at the current position opens a
// record literal rather than a block.
func (p *parser) isRecord() bool {
	k := p.k + 1
	for p.items[k].tok == tokNewline {
		k++
	}
	switch p.items[k].tok {
	case tokRbrace:
		return true
	case tokIdent:
		return p.items[k+1].tok == tokColon
	}
	return false
}

func (p *parser) record(field func() ast.Expr) ast.Expr {
	start := p.pos
	p.want(tokLbrace)
	p.skipNewlines()
	rec := &ast.RecordLit{Kind: "RecordLit", Fields: []ast.RecordField{}}
	for p.tok != tokRbrace {
		name := p.ident()
		p.want(tokColon)
		p.skipNewlines()
		rec.Fields = append(rec.Fields, ast.RecordField{Name: name, Value: field()})
		p.skipNewlines()
		if !p.got(tokComma) {
			break
		}
		p.skipNewlines()
	}
	p.want(tokRbrace)
	rec.Loc = p.loc(start)
	return rec
}

func (p *parser) block() ast.Expr {
	start := p.pos
	p.want(tokLbrace)
	block := &ast.Block{Kind: "Block", Stmts: []ast.Expr{}}
	p.skipSeparators()
	for p.tok != tokRbrace {
		block.Stmts = append(block.Stmts, p.decl())
		p.endStatement(tokRbrace)
	}
	p.want(tokRbrace)
	block.Loc = p.loc(start)
	return block
}

// pattern parses a match or handler pattern.  Alternatives separated by
// "|" group to the left.
func (p *parser) pattern() ast.Expr {
	x := p.patternTerm()
	for p.gotOverNewline(tokBar) {
		p.skipNewlines()
		y := p.patternTerm()
		x = &ast.PatternOr{Kind: "PatternOr", Left: x, Right: y, Loc: ast.NewLoc(x.Pos(), p.prevEnd-1)}
	}
	return x
}

func (p *parser) patternTerm() ast.Expr {
	start := p.pos
	switch p.tok {
	case tokMul:
		p.next()
		return &ast.Var{Kind: "Var", Name: "*", Loc: p.loc(start)}
	case tokIdent:
		name := p.qname()
		if strings.Contains(name, ".") || !isUpper(name) {
			return &ast.Var{Kind: "Var", Name: name, Loc: p.loc(start)}
		}
		ctor := &ast.Ctor{Kind: "Ctor", Name: name, Args: []ast.Expr{}}
		if p.got(tokLparen) {
			if p.tok != tokRparen {
				ctor.Args = append(ctor.Args, p.pattern())
				for p.got(tokComma) {
					ctor.Args = append(ctor.Args, p.pattern())
				}
			}
			p.want(tokRparen)
		}
		ctor.Loc = p.loc(start)
		return ctor
	case tokSub:
		p.next()
		operand := p.literal()
		return &ast.Unary{Kind: "Unary", Op: "-", Operand: operand, Loc: p.loc(start)}
	case tokLparen:
		p.next()
		if p.got(tokRparen) {
			return &ast.TupleLit{Kind: "TupleLit", Elems: []ast.Expr{}, Loc: p.loc(start)}
		}
		x := p.pattern()
		if p.tok != tokComma {
			p.want(tokRparen)
			return x
		}
		elems := []ast.Expr{x}
		for p.got(tokComma) && p.tok != tokRparen {
			elems = append(elems, p.pattern())
		}
		p.want(tokRparen)
		return &ast.TupleLit{Kind: "TupleLit", Elems: elems, Loc: p.loc(start)}
	case tokLbrack:
		p.next()
		elems := []ast.Expr{}
		if p.tok != tokRbrack {
			elems = append(elems, p.pattern())
			for p.got(tokComma) {
				elems = append(elems, p.pattern())
			}
		}
		p.want(tokRbrack)
		return &ast.ListLit{Kind: "ListLit", Elems: elems, Loc: p.loc(start)}
	case tokLbrace:
		return p.record(p.pattern)
	}
	return p.literal()
}

func isUpper(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
