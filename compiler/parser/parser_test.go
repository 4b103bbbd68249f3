package parser_test

import (
	"testing"

	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := parser.Parse("test.lm", []byte(src))
	require.NoError(t, err)
	return p
}

func TestCounterProgram(t *testing.T) {
	p := parse(t, `
actor Counter(msg) = msg
let a = spawn Counter
send a, 5
send a, 7
a
`)
	require.Len(t, p.Decls, 5)
	actor, ok := p.Decls[0].(*ast.ActorDecl)
	require.True(t, ok)
	assert.Equal(t, "Counter", actor.Name)
	assert.Equal(t, &ast.Param{Name: "msg"}, actor.Param)
	let := p.Decls[1].(*ast.Let)
	assert.Equal(t, "Counter", let.Value.(*ast.Spawn).Actor)
	send := p.Decls[2].(*ast.Send)
	assert.Equal(t, int64(5), send.Message.(*ast.LitNum).Value)
}

func TestShapeProgram(t *testing.T) {
	p := parse(t, `enum Shape = Circle(Int) | Square(Int)
let s = Circle(3)
match s { Circle(r) -> r*r; Square(a) -> a*a }`)
	enum := p.Decls[0].(*ast.EnumDecl)
	assert.Equal(t, []ast.Variant{{Name: "Circle", Params: []string{"Int"}}, {Name: "Square", Params: []string{"Int"}}}, enum.Variants)
	m := p.Decls[2].(*ast.Match)
	require.Len(t, m.Cases, 2)
	assert.Equal(t, "Circle", m.Cases[0].Pattern.(*ast.Ctor).Name)
	assert.Equal(t, "*", m.Cases[1].Body.(*ast.Binary).Op)
}

func TestPrecedence(t *testing.T) {
	p := parse(t, "1 + 2 * 3 == 7 && !false || x")
	or := p.Decls[0].(*ast.Binary)
	assert.Equal(t, "||", or.Op)
	and := or.LHS.(*ast.Binary)
	assert.Equal(t, "&&", and.Op)
	eq := and.LHS.(*ast.Binary)
	assert.Equal(t, "==", eq.Op)
	sum := eq.LHS.(*ast.Binary)
	assert.Equal(t, "+", sum.Op)
	assert.Equal(t, "*", sum.RHS.(*ast.Binary).Op)
	assert.Equal(t, "!", and.RHS.(*ast.Unary).Op)

	p = parse(t, "10 - 4 - 3")
	sub := p.Decls[0].(*ast.Binary)
	assert.Equal(t, int64(3), sub.RHS.(*ast.LitNum).Value)
}

func TestEffectCalls(t *testing.T) {
	p := parse(t, `effect audit
fn log(x) raises io, audit = { io.print(x); audit.record(x) }
math.sq(2)`)
	fn := p.Decls[1].(*ast.Fn)
	assert.Equal(t, []string{"io", "audit"}, fn.Effects)
	body := fn.Body.(*ast.Block)
	require.Len(t, body.Stmts, 2)
	ioCall := body.Stmts[0].(*ast.EffectCall)
	assert.Equal(t, "io", ioCall.Effect)
	assert.Equal(t, "print", ioCall.Op)
	assert.Equal(t, "audit", body.Stmts[1].(*ast.EffectCall).Effect)
	call := p.Decls[2].(*ast.Call)
	assert.Equal(t, "math.sq", call.Callee.(*ast.Var).Name)
}

func TestHandlerActor(t *testing.T) {
	p := parse(t, `actor Account raises io {
  state balance: Int = 0
  on Deposit(n) if n > 0 -> balance = balance + n
  on Balance reply Int -> balance
  on Audit | Reset -> io.print("audit")
}`)
	actor := p.Decls[0].(*ast.ActorDeclNew)
	assert.Equal(t, []string{"io"}, actor.Effects)
	require.Len(t, actor.State, 1)
	assert.Equal(t, "Int", actor.State[0].Type)
	require.Len(t, actor.Handlers, 3)
	assert.NotNil(t, actor.Handlers[0].Guard)
	assert.IsType(t, &ast.Assign{}, actor.Handlers[0].Body)
	assert.Equal(t, "Int", actor.Handlers[1].Reply)
	assert.IsType(t, &ast.PatternOr{}, actor.Handlers[2].Pattern)
}

func TestRecordsAndBlocks(t *testing.T) {
	p := parse(t, `let r = {name: "ann", age: 3}
let b = {
  let x = 1
  x + 1
}
let e = {}
(1, "two")
[1, 2]`)
	assert.IsType(t, &ast.RecordLit{}, p.Decls[0].(*ast.Let).Value)
	assert.Len(t, p.Decls[1].(*ast.Let).Value.(*ast.Block).Stmts, 2)
	assert.IsType(t, &ast.RecordLit{}, p.Decls[2].(*ast.Let).Value)
	assert.Len(t, p.Decls[3].(*ast.TupleLit).Elems, 2)
	assert.Len(t, p.Decls[4].(*ast.ListLit).Elems, 2)
}

func TestLetInAndIf(t *testing.T) {
	p := parse(t, `let x = 2 in
  if x > 1
  then "big"
  else "small"`)
	let := p.Decls[0].(*ast.Let)
	require.NotNil(t, let.Body)
	e := let.Body.(*ast.If)
	assert.Equal(t, "small", e.Else.(*ast.LitText).Value)
}

func TestStoreAndQuery(t *testing.T) {
	p := parse(t, `store users: List<User> = "sqlite:app.db:users#orderBy=age"
query adults = users where age >= 18 select name, age`)
	store := p.Decls[0].(*ast.StoreDecl)
	assert.Equal(t, "List<User>", store.Schema)
	assert.Equal(t, "sqlite:app.db:users#orderBy=age", store.Config)
	q := p.Decls[1].(*ast.QueryDecl)
	assert.Equal(t, "users", q.Source)
	assert.Equal(t, []string{"name", "age"}, q.Select)
}

func TestAsk(t *testing.T) {
	p := parse(t, `ask target, Ping, 10`)
	ask := p.Decls[0].(*ast.Ask)
	require.NotNil(t, ask.Timeout)
	assert.Equal(t, int64(10), *ask.Timeout)
	assert.Equal(t, "Ping", ask.Message.(*ast.Ctor).Name)
}

func TestLambdaInArgs(t *testing.T) {
	p := parse(t, `apply(fn(x) = {
  let y = x * 2
  y
}, 4)`)
	call := p.Decls[0].(*ast.Call)
	require.Len(t, call.Args, 2)
	fn := call.Args[0].(*ast.Fn)
	assert.Empty(t, fn.Name)
	assert.Len(t, fn.Body.(*ast.Block).Stmts, 2)
}

func TestComments(t *testing.T) {
	p := parse(t, "-- leading\nlet x = 1 -- trailing\n\n-- done\n")
	assert.Len(t, p.Decls, 1)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src string
		msg string
	}{
		{"let x = ", "test.lm:1:9: unexpected \"end of input\""},
		{"let x = 1\nlet = 2", "test.lm:2:5: expected identifier, found \"=\""},
		{"\"abc", "test.lm:1:1: text literal not terminated"},
		{"x & y", "test.lm:1:3: unexpected character '&'"},
		{"99999999999999999999", "integer literal out of range"},
		{"1 2", "expected newline or ';' after statement, found integer 2"},
	}
	for _, c := range cases {
		_, err := parser.Parse("test.lm", []byte(c.src))
		require.Error(t, err, c.src)
		assert.Contains(t, err.Error(), c.msg, c.src)
	}
}

func TestParseExpr(t *testing.T) {
	e, err := parser.ParseExpr("audit.note(1)", "audit")
	require.NoError(t, err)
	assert.IsType(t, &ast.EffectCall{}, e)

	e, err = parser.ParseExpr("audit.note(1)")
	require.NoError(t, err)
	assert.IsType(t, &ast.Call{}, e)

	_, err = parser.ParseExpr("1 )")
	assert.Error(t, err)
}

func TestLocations(t *testing.T) {
	p := parse(t, "let x = 1 + 22")
	bin := p.Decls[0].(*ast.Let).Value.(*ast.Binary)
	assert.Equal(t, 8, bin.Pos())
	assert.Equal(t, 13, bin.End())
}
