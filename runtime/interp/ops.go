package interp

import (
	"cmp"
	"math"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

func arith[T number](op string, a, b T) T {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	}
	panic("arith: unknown operator " + op)
}

func compare[T constraints.Ordered](op string, a, b T) bool {
	c := cmp.Compare(a, b)
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func (i *Interpreter) evalBinary(e *ast.Binary) lumen.Value {
	switch e.Op {
	case "&&":
		if !lumen.Truthy(i.Eval(e.LHS)) {
			return lumen.False
		}
		return lumen.NewBool(lumen.Truthy(i.Eval(e.RHS)))
	case "||":
		if lumen.Truthy(i.Eval(e.LHS)) {
			return lumen.True
		}
		return lumen.NewBool(lumen.Truthy(i.Eval(e.RHS)))
	}
	return i.binary(e.Op, i.Eval(e.LHS), i.Eval(e.RHS))
}

func (i *Interpreter) binary(op string, lhs, rhs lumen.Value) lumen.Value {
	switch op {
	case "==":
		return lumen.NewBool(lumen.Equal(lhs, rhs))
	case "!=":
		return lumen.NewBool(!lumen.Equal(lhs, rhs))
	case "<", "<=", ">", ">=":
		if a, ok := lhs.(lumen.Text); ok {
			b, ok := rhs.(lumen.Text)
			return lumen.NewBool(ok && compare(op, a, b))
		}
		a, b, ok := floats(lhs, rhs)
		if !ok {
			return lumen.False
		}
		if x, ok := lhs.(lumen.Int); ok {
			if y, ok := rhs.(lumen.Int); ok {
				return lumen.NewBool(compare(op, x, y))
			}
		}
		return lumen.NewBool(compare(op, a, b))
	case "+":
		_, ltext := lhs.(lumen.Text)
		_, rtext := rhs.(lumen.Text)
		if ltext || rtext {
			return lumen.Text(lumen.Display(lhs) + lumen.Display(rhs))
		}
	}
	switch op {
	case "+", "-", "*", "/", "%":
	default:
		return lumen.Null{}
	}
	if s, ok := lhs.(lumen.Signal); ok {
		return s
	}
	if s, ok := rhs.(lumen.Signal); ok {
		return s
	}
	if x, ok := lhs.(lumen.Int); ok {
		if y, ok := rhs.(lumen.Int); ok {
			return i.intArith(op, x, y)
		}
	}
	a, b, ok := floats(lhs, rhs)
	if !ok {
		return lumen.Null{}
	}
	if op == "%" {
		return lumen.Float(math.Mod(a, b))
	}
	return lumen.Float(arith(op, a, b))
}

func (i *Interpreter) intArith(op string, a, b lumen.Int) lumen.Value {
	switch op {
	case "/", "%":
		if b == 0 {
			return i.signal(&lumen.DivideByZero{})
		}
		if op == "%" {
			return a % b
		}
	}
	return arith(op, a, b)
}

// floats returns both operands as float64 when both are numbers.
func floats(lhs, rhs lumen.Value) (float64, float64, bool) {
	a, ok := toFloat(lhs)
	if !ok {
		return 0, 0, false
	}
	b, ok := toFloat(rhs)
	return a, b, ok
}

func toFloat(v lumen.Value) (float64, bool) {
	switch v := v.(type) {
	case lumen.Int:
		return float64(v), true
	case lumen.Float:
		return float64(v), true
	}
	return 0, false
}

func (i *Interpreter) unary(op string, v lumen.Value) lumen.Value {
	switch op {
	case "!":
		return lumen.NewBool(!lumen.Truthy(v))
	case "-":
		switch v := v.(type) {
		case lumen.Int:
			return -v
		case lumen.Float:
			return -v
		case lumen.Signal:
			return v
		}
	}
	return lumen.Null{}
}
