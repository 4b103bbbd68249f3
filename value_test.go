package lumen_test

import (
	"math"
	"testing"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	v := lumen.List{
		lumen.Int(1),
		lumen.Float(2),
		lumen.Text("a\"b"),
		lumen.Null{},
		lumen.Tuple{lumen.True, lumen.NewCtor("Circle", lumen.Int(3))},
		lumen.Record{{Name: "x", Value: lumen.Int(1)}, {Name: "y", Value: lumen.NewCtor("None")}},
		&lumen.DeniedEffect{Effect: "net"},
	}
	assert.Equal(t, `[1, 2.0, "a\"b", null, (true, Circle(3)), {x: 1, y: None}, "(denied effect net)"]`, lumen.Format(v))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "hello", lumen.Display(lumen.Text("hello")))
	assert.Equal(t, "(timeout 10)", lumen.Display(&lumen.Timeout{Ms: 10}))
	assert.Equal(t, `["hello"]`, lumen.Display(lumen.List{lumen.Text("hello")}))
}

func TestSignalEqualsSentinel(t *testing.T) {
	assert.True(t, lumen.Equal(lumen.Text("(denied effect net)"), &lumen.DeniedEffect{Effect: "net"}))
	assert.False(t, lumen.Equal(lumen.Text("(denied effect io)"), &lumen.DeniedEffect{Effect: "net"}))
	assert.True(t, lumen.Equal(&lumen.StepLimit{Steps: 5}, lumen.Text("(step limit 5)")))
	assert.False(t, lumen.Equal(lumen.Int(1), lumen.Float(1)))
}

func TestTruthy(t *testing.T) {
	for _, v := range []lumen.Value{lumen.False, lumen.Null{}, lumen.Int(0), lumen.Text(""), lumen.Float(math.NaN()), &lumen.DivideByZero{}} {
		assert.False(t, lumen.Truthy(v), lumen.Format(v))
	}
	for _, v := range []lumen.Value{lumen.True, lumen.Int(-1), lumen.Text("x"), lumen.List{}, lumen.NewCtor("None")} {
		assert.True(t, lumen.Truthy(v), lumen.Format(v))
	}
}

func TestAsInt(t *testing.T) {
	n, ok := lumen.AsInt(lumen.Float(3))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	_, ok = lumen.AsInt(lumen.Float(3.5))
	assert.False(t, ok)
	_, ok = lumen.AsInt(lumen.Float(math.Inf(1)))
	assert.False(t, ok)
	_, ok = lumen.AsInt(lumen.Text("3"))
	assert.False(t, ok)
}

func TestRecordWith(t *testing.T) {
	r := lumen.Record{{Name: "a", Value: lumen.Int(1)}, {Name: "b", Value: lumen.Int(2)}}
	s := r.With("a", lumen.Int(9)).With("c", lumen.Int(3))
	assert.Equal(t, "{a: 1, b: 2}", lumen.Format(r))
	assert.Equal(t, "{a: 9, b: 2, c: 3}", lumen.Format(s))
	v, ok := s.Get("c")
	assert.True(t, ok)
	assert.Equal(t, lumen.Int(3), v)
	_, ok = s.Get("d")
	assert.False(t, ok)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.0", lumen.FormatFloat(1))
	assert.Equal(t, "0.5", lumen.FormatFloat(0.5))
	assert.Equal(t, "1e+21", lumen.FormatFloat(1e21))
	assert.Equal(t, "NaN", lumen.FormatFloat(math.NaN()))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ctor", lumen.NewCtor("X").Kind().String())
	assert.Equal(t, "signal", (&lumen.Unbound{Name: "x"}).Kind().String())
	assert.Equal(t, "kind(99)", lumen.Kind(99).String())
}
