package interp_test

import (
	"context"
	"io/fs"
	"testing"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/compiler/sid"
	"github.com/colin-oos/lumen-sub000/runtime/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type host struct {
	calls []string
	rows  map[string]lumen.List
}

func (h *host) Invoke(_ context.Context, effect, op string, args []lumen.Value) lumen.Value {
	call := effect + "." + op
	for _, a := range args {
		call += " " + lumen.Display(a)
	}
	h.calls = append(h.calls, call)
	return lumen.Null{}
}

func (h *host) LoadStore(_ context.Context, _, config string) (lumen.List, error) {
	rows, ok := h.rows[config]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return rows, nil
}

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := parser.Parse("test.lm", []byte(src))
	require.NoError(t, err)
	sid.Assign(p)
	return p
}

func eval(t *testing.T, src string, conf interp.Config) (lumen.Value, *interp.Interpreter) {
	t.Helper()
	in := interp.New(context.Background(), conf)
	return in.Run(parse(t, src)), in
}

func sentinels(signals []lumen.Signal) []string {
	var out []string
	for _, s := range signals {
		out = append(out, s.Sentinel())
	}
	return out
}

func TestExpressions(t *testing.T) {
	cases := []struct {
		src      string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"7 / 2", "3"},
		{"7 % 4", "3"},
		{"1 + 2.5", "3.5"},
		{"7.5 % 2", "1.5"},
		{"-(2 - 5)", "3"},
		{`"n=" + 4`, `"n=4"`},
		{`"a" < "b"`, "true"},
		{"1 == 1.0", "false"},
		{"(1, 2) == (1, 2)", "true"},
		{"!0", "true"},
		{"0 || \"\"", "false"},
		{"[1, 2] && {a: 1}", "true"},
		{"if 0 then 1 else 2", "2"},
		{"let x = 2 in x * x", "4"},
		{"{a: 1, b: (true, null)}", "{a: 1, b: (true, null)}"},
		{"Circle(1 + 1)", "Circle(2)"},
		{"let r = {p: {q: 5}}\nr.p.q", "5"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			val, _ := eval(t, c.src, interp.Config{})
			assert.Equal(t, c.expected, lumen.Format(val))
		})
	}
}

func TestSignals(t *testing.T) {
	cases := []struct {
		src      string
		expected string
	}{
		{"10 / 0", "(division by zero)"},
		{"y + 1", "(unbound y)"},
		{"let x = 3\nx(1)", "(not-callable 3)"},
		{"fn loop(n) = loop(n + 1)\nloop(0)", "(stack overflow loop)"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			val, in := eval(t, c.src, interp.Config{})
			assert.Equal(t, c.expected, lumen.Display(val))
			require.NotEmpty(t, in.Signals())
			assert.Equal(t, c.expected, in.Signals()[0].Sentinel())
		})
	}
}

func TestClosures(t *testing.T) {
	val, _ := eval(t, `fn fact(n) = if n <= 1 then 1 else n * fact(n - 1)
fact(10)`, interp.Config{})
	assert.Equal(t, lumen.Int(3628800), val)

	val, _ = eval(t, `let mk = fn(n) = fn(x) = x + n
let add2 = mk(2)
add2(40)`, interp.Config{})
	assert.Equal(t, lumen.Int(42), val)

	val, _ = eval(t, `let f = fn(a, b) = (a, b)
f(1)`, interp.Config{})
	assert.Equal(t, "(1, null)", lumen.Format(val))

	val, _ = eval(t, "fn double(x) = x * 2\n(double, fn(y) = y)", interp.Config{})
	assert.Equal(t, "(<fn double>, <fn fn>)", lumen.Format(val))
}

func TestClosureSnapshot(t *testing.T) {
	for _, c := range []struct {
		src  string
		want lumen.Value
	}{
		{"let x = 1\nlet f = fn() = x\nx = 2\n(f(), x)", lumen.Tuple{lumen.Int(1), lumen.Int(2)}},
		{"let g = { let y = 1; let h = fn() = y; y = 5; h }\ng()", lumen.Int(1)},
		{"fn k(n) = { let c = fn() = n; n = 9; c() }\nk(3)", lumen.Int(3)},
		{"fn loop(n) = if n == 0 then 0 else loop(n - 1)\nlet loop2 = loop\nloop2(3)", lumen.Int(0)},
	} {
		val, _ := eval(t, c.src, interp.Config{})
		assert.Equal(t, c.want, val, "source:\n%s", c.src)
	}
}

func TestActorSnapshot(t *testing.T) {
	h := &host{}
	eval(t, `let greeting = "hi"
actor Echo(msg) raises io = io.print(greeting)
greeting = "bye"
send Echo, 1`, interp.Config{Host: h})
	assert.Equal(t, []string{"io.print hi"}, h.calls)
}

func TestAssignScope(t *testing.T) {
	// A call shadows its caller's variable.
	val, _ := eval(t, `let x = 1
fn f() = { x = 5; x }
let y = f()
(x, y)`, interp.Config{})
	assert.Equal(t, "(1, 5)", lumen.Format(val))

	// A block updates a variable of its own frame.
	val, _ = eval(t, `let n = 1
{ n = n + 1; n = n * 10 }
n`, interp.Config{})
	assert.Equal(t, lumen.Int(20), val)

	val, _ = eval(t, "let x = 1 in x\nx", interp.Config{})
	assert.Equal(t, "(unbound x)", lumen.Display(val))
}

func TestModules(t *testing.T) {
	val, _ := eval(t, `module geo
fn area(r) = r * r
(geo.area(3), area(4))`, interp.Config{})
	assert.Equal(t, "(9, 16)", lumen.Format(val))
}

func TestEffectCalls(t *testing.T) {
	h := &host{}
	val, in := eval(t, `io.print("hi", 1)`, interp.Config{Host: h})
	assert.Equal(t, lumen.Null{}, val)
	assert.Equal(t, []string{"io.print hi 1"}, h.calls)
	assert.Empty(t, in.Signals())

	h = &host{}
	val, in = eval(t, `io.print(net.get("u"))`, interp.Config{Host: h, DeniedEffects: []string{"io"}})
	assert.Equal(t, "(denied effect io)", lumen.Display(val))
	assert.Empty(t, h.calls, "arguments of a denied call are not evaluated")
	assert.Equal(t, 1, in.Stats().Denied)
}

func TestDeniedFunction(t *testing.T) {
	h := &host{}
	val, in := eval(t, `fn f() raises io, net = { io.print("side effect"); net.get("u") }
f()`, interp.Config{Host: h, DeniedEffects: []string{"net"}})
	assert.Equal(t, "(denied effect net)", lumen.Display(val))
	assert.Empty(t, h.calls)
	assert.Equal(t, []string{"(denied effect net)"}, sentinels(in.Signals()))
}

func TestGuardPurity(t *testing.T) {
	h := &host{}
	val, _ := eval(t, `match 1 { x if io.print("guard") -> "effect"; x if x > 0 -> "pure"; _ -> "none" }`, interp.Config{Host: h})
	assert.Equal(t, lumen.Text("pure"), val)
	assert.Empty(t, h.calls)
}

func TestMatchConflict(t *testing.T) {
	val, _ := eval(t, `let f = fn(v) = match v { Pair(x, x) -> x; _ -> "conflict" }
(f(Pair(1, 2)), f(Pair(1, 1)))`, interp.Config{})
	assert.Equal(t, `("conflict", 1)`, lumen.Format(val))
}

func TestShape(t *testing.T) {
	val, _ := eval(t, `enum Shape = Circle(Int) | Square(Int)
let s = Circle(3)
match s { Circle(r) -> r*r; Square(a) -> a*a }`, interp.Config{})
	assert.Equal(t, lumen.Int(9), val)
}

func TestCounter(t *testing.T) {
	p := parse(t, `actor Counter(msg) = msg
let a = spawn Counter
send a, 5
send a, 7`)
	in := interp.New(context.Background(), interp.Config{})
	val := in.Run(p)
	assert.Equal(t, lumen.Text("Counter"), val)
	body := p.Decls[0].(*ast.ActorDecl).Body.SID()
	var n int
	for _, e := range in.Trace().Entries() {
		if e.Sid == body {
			n++
		}
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, in.Stats().Messages)
}

func TestHandlerActor(t *testing.T) {
	val, in := eval(t, `actor Account {
  state balance: Int = 0
  on Deposit(n) if n > 0 -> balance = balance + n
  on Balance reply Int -> balance
}
let a = spawn Account
send a, Deposit(5)
send a, Deposit(-1)
send a, Deposit(7)
ask a, Balance`, interp.Config{})
	assert.Equal(t, lumen.Int(12), val)
	state, ok := in.State("Account")
	require.True(t, ok)
	assert.Equal(t, "{balance: 12}", lumen.Format(state))
	assert.Equal(t, 1, in.Stats().Dropped)
}

func TestActorEffects(t *testing.T) {
	h := &host{}
	_, in := eval(t, `actor Quiet(msg) = io.print(msg)
actor Loud(msg) raises io = io.print(msg)
send Quiet, "a"
send Loud, "b"`, interp.Config{Host: h})
	assert.Equal(t, []string{"io.print b"}, h.calls)
	assert.Equal(t, []string{"(denied effect io)"}, sentinels(in.Signals()))
}

func TestAsk(t *testing.T) {
	val, _ := eval(t, "ask Nobody, Ping, 10", interp.Config{})
	assert.Equal(t, "(timeout 10)", lumen.Display(val))

	val, _ = eval(t, "ask Nobody, Ping", interp.Config{})
	assert.Equal(t, lumen.Null{}, val)

	// Nothing replies, so the ask resolves as soon as the scheduler is idle.
	val, _ = eval(t, `actor Sink(msg) = msg
ask Sink, Ping, 60000`, interp.Config{})
	assert.Equal(t, "(timeout 60000)", lumen.Display(val))
}

func TestStepLimit(t *testing.T) {
	val, in := eval(t, `actor Ping(n) = send Ping, n + 1
send Ping, 0`, interp.Config{MaxSteps: 5})
	assert.Equal(t, lumen.Null{}, val)
	assert.Equal(t, 5, in.Stats().Messages)
	assert.Equal(t, []string{"(step limit 5)"}, sentinels(in.Signals()))
}

func TestStoreAndQuery(t *testing.T) {
	h := &host{rows: map[string]lumen.List{
		"users.json": {
			lumen.Record{{Name: "age", Value: lumen.Int(31)}, {Name: "name", Value: lumen.Text("ann")}},
			lumen.Record{{Name: "age", Value: lumen.Int(12)}, {Name: "name", Value: lumen.Text("bo")}},
		},
	}}
	val, in := eval(t, `store users: List<User> = "users.json"
let min = 18
query adults = users where age >= min select name
adults`, interp.Config{Host: h})
	assert.Equal(t, `[{name: "ann"}]`, lumen.Format(val))
	assert.Empty(t, in.Signals())

	val, in = eval(t, `store gone: List<User> = "gone.json"
gone`, interp.Config{Host: h})
	assert.Equal(t, lumen.List{}, val)
	assert.Equal(t, []string{"(store.gone error)"}, sentinels(in.Signals()))
}

func TestDeterminism(t *testing.T) {
	src := `actor Account {
  state total: Int = 0
  on Add(n) -> total = total + n
  on Total reply Int -> total
}
send Account, Add(1)
send Account, Add(2)
ask Account, Total`
	_, a := eval(t, src, interp.Config{})
	_, b := eval(t, src, interp.Config{})
	assert.Equal(t, a.Trace().Entries(), b.Trace().Entries())
	assert.Equal(t, a.Trace().Hash(), b.Trace().Hash())
}
