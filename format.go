package lumen

import (
	"strconv"
	"strings"
)

// Format returns the canonical serialization of v.  Two values are equal
// exactly when their canonical serializations are equal, which is how
// the == operator and the pattern matcher compare values.
func Format(v Value) string {
	var b strings.Builder
	format(&b, v)
	return b.String()
}

// Display is like Format except that a top-level text (or signal) is
// written without quotes.  It is what io.print and the CLI show.
func Display(v Value) string {
	if s, ok := AsText(v); ok {
		return s
	}
	return Format(v)
}

func Equal(a, b Value) bool {
	return Format(a) == Format(b)
}

// FormatFloat renders f so that it always reads back as a float: the
// result carries a decimal point or an exponent.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}

func format(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		b.WriteString(FormatFloat(float64(v)))
	case Text:
		b.WriteString(strconv.Quote(string(v)))
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	case List:
		b.WriteByte('[')
		formatValues(b, v)
		b.WriteByte(']')
	case Tuple:
		b.WriteByte('(')
		formatValues(b, v)
		b.WriteByte(')')
	case Record:
		b.WriteByte('{')
		for k, f := range v {
			if k > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			format(b, f.Value)
		}
		b.WriteByte('}')
	case *Ctor:
		b.WriteString(v.Tag)
		if len(v.Values) > 0 {
			b.WriteByte('(')
			formatValues(b, v.Values)
			b.WriteByte(')')
		}
	case Signal:
		b.WriteString(strconv.Quote(v.Sentinel()))
	case Callable:
		b.WriteString("<fn ")
		b.WriteString(v.Name())
		b.WriteByte('>')
	default:
		b.WriteString("<unknown>")
	}
}

func formatValues(b *strings.Builder, vals []Value) {
	for k, v := range vals {
		if k > 0 {
			b.WriteString(", ")
		}
		format(b, v)
	}
}
