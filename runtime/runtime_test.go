package runtime_test

import (
	"bytes"
	"context"
	"testing"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/runtime"
	"github.com/colin-oos/lumen-sub000/ztest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := parser.Parse("test.lm", []byte(src))
	require.NoError(t, err)
	return p
}

func run(t *testing.T, src string, opts runtime.Options) (*runtime.Result, string) {
	t.Helper()
	var stdout bytes.Buffer
	opts.Stdout = &stdout
	res, err := runtime.Run(context.Background(), parse(t, src), opts)
	require.NoError(t, err)
	return res, stdout.String()
}

func TestNoProgram(t *testing.T) {
	_, err := runtime.Run(context.Background(), nil, runtime.Options{})
	assert.ErrorIs(t, err, runtime.ErrNoProgram)
}

func TestDeterminism(t *testing.T) {
	const src = `actor Echo(msg) raises io = io.print("got", msg)
fn twice(x) = x * 2
send Echo, twice(1)
send Echo, twice(2)
twice(21)`
	opts := runtime.Options{MockEffects: true, SchedulerSeed: "abc"}
	a, outA := run(t, src, opts)
	opts.SchedulerSeed = "xyz"
	b, outB := run(t, src, opts)
	assert.Equal(t, lumen.Int(42), a.Value)
	assert.Equal(t, a.Value, b.Value)
	assert.Equal(t, a.Trace, b.Trace)
	assert.Equal(t, a.Hash, b.Hash)
	assert.Equal(t, "got 2\ngot 4\n", outA)
	assert.Equal(t, outA, outB)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Len(t, a.Hash, 16)
}

func TestEffectDenial(t *testing.T) {
	res, stdout := run(t, `fn fetch(url) raises io, net = { io.print("fetching"); net.get(url) }
fetch("http://example.com")`, runtime.Options{DeniedEffects: []string{"net"}})
	assert.Equal(t, "(denied effect net)", lumen.Display(res.Value))
	assert.Empty(t, stdout)
	assert.True(t, res.Denied())

	// Denied effects compare equal to their sentinel text.
	res, _ = run(t, `fn f() raises net = net.get("u")
"(denied effect net)" == f()`, runtime.Options{DeniedEffects: []string{"net"}})
	assert.Equal(t, lumen.True, res.Value)
}

func TestMockEffects(t *testing.T) {
	res, _ := run(t, `(net.get("http://example.com"), http.get("u"), time.now())`, runtime.Options{MockEffects: true})
	assert.Equal(t, `("(mock net.get http://example.com)", "(mock http.get u)", 0)`, lumen.Format(res.Value))
	assert.False(t, res.Denied())
}

func TestCustomEffect(t *testing.T) {
	res, _ := run(t, `effect audit
audit.log("x")`, runtime.Options{})
	assert.Equal(t, "(audit.log error)", lumen.Display(res.Value))
	require.Len(t, res.Signals, 1)
	assert.IsType(t, &lumen.AdapterError{}, res.Signals[0])
}

func TestGuardPurity(t *testing.T) {
	res, stdout := run(t, `actor Door {
  on Open if io.print("peek") -> "effect"
  on Open reply Text -> "pure"
}
ask Door, Open`, runtime.Options{})
	assert.Equal(t, lumen.Text("pure"), res.Value)
	assert.Empty(t, stdout)
}

func TestPatternConflict(t *testing.T) {
	res, _ := run(t, `fn same(p) = match p { Pair(x, x) -> Same(x); _ -> Different }
[same(Pair(1, 2)), same(Pair(1, 1))]`, runtime.Options{})
	assert.Equal(t, "[Different, Same(1)]", lumen.Format(res.Value))
}

func TestAskTimeout(t *testing.T) {
	res, _ := run(t, "ask target, Ping, 10", runtime.Options{})
	assert.Equal(t, "(timeout 10)", lumen.Display(res.Value))
	require.Len(t, res.Signals, 2)
	assert.Equal(t, "(unbound target)", res.Signals[0].Sentinel())
	assert.Equal(t, "(timeout 10)", res.Signals[1].Sentinel())
}

func TestCounterScenario(t *testing.T) {
	p := parse(t, `actor Counter(msg) = msg
let a = spawn Counter
send a, 5
send a, 7`)
	res, err := runtime.Run(context.Background(), p, runtime.Options{})
	require.NoError(t, err)
	assert.Equal(t, lumen.Text("Counter"), res.Value)
	body := p.Decls[0].(*ast.ActorDecl).Body.SID()
	require.NotEmpty(t, body)
	var n int
	for _, e := range res.Trace {
		if e.Sid == body {
			n++
		}
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, res.Stats.Messages)
}

func TestShapeScenario(t *testing.T) {
	res, _ := run(t, `enum Shape = Circle(Int) | Square(Int)
fn area(s) = match s { Circle(r) -> r*r; Square(a) -> a*a }
area(Circle(3))`, runtime.Options{})
	assert.Equal(t, lumen.Int(9), res.Value)
	assert.Empty(t, res.Signals)
}

func TestStepLimit(t *testing.T) {
	res, _ := run(t, `actor Loop(n) = send Loop, n
send Loop, 0
"done"`, runtime.Options{MaxSteps: 100})
	assert.Equal(t, lumen.Text("done"), res.Value)
	assert.Equal(t, 100, res.Stats.Messages)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, "(step limit 100)", res.Signals[0].Sentinel())
}

func TestSession(t *testing.T) {
	var stdout bytes.Buffer
	s := runtime.NewSession(context.Background(), runtime.Options{Stdout: &stdout})

	val, signals, err := s.Eval("let x = 2")
	require.NoError(t, err)
	assert.Equal(t, lumen.Int(2), val)
	assert.Empty(t, signals)

	_, _, err = s.Eval("let y = ")
	require.Error(t, err)

	val, _, err = s.Eval("x * 21")
	require.NoError(t, err)
	assert.Equal(t, lumen.Int(42), val)

	_, _, err = s.Eval("effect audit")
	require.NoError(t, err)
	val, signals, err = s.Eval(`audit.log(x)`)
	require.NoError(t, err)
	assert.Equal(t, "(audit.log error)", lumen.Display(val))
	require.Len(t, signals, 1)

	val, signals, err = s.Eval(`io.print("hi")`)
	require.NoError(t, err)
	assert.Equal(t, lumen.Null{}, val)
	assert.Empty(t, signals)
	assert.Equal(t, "hi\n", stdout.String())

	assert.True(t, s.Incomplete("fn f(a) = {\n  a + 1"))
	assert.False(t, s.Incomplete("fn f(a) = {\n  a + 1\n}"))
	assert.False(t, s.Incomplete("1 )"))

	v, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, lumen.Int(2), v)
	assert.Len(t, s.Hash(), 16)
}

func TestZTest(t *testing.T) { ztest.Run(t, "ztests") }
