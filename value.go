// Package lumen defines the runtime values shared by the Lumen interpreter,
// its effect adapters, and the tools built on top of them.
package lumen

import (
	"math"
	"strconv"
)

type Kind int

const (
	NullKind Kind = iota
	IntKind
	FloatKind
	TextKind
	BoolKind
	ListKind
	TupleKind
	RecordKind
	CtorKind
	FuncKind
	SignalKind
)

var kindNames = [...]string{
	NullKind:   "null",
	IntKind:    "int",
	FloatKind:  "float",
	TextKind:   "text",
	BoolKind:   "bool",
	ListKind:   "list",
	TupleKind:  "tuple",
	RecordKind: "record",
	CtorKind:   "ctor",
	FuncKind:   "func",
	SignalKind: "signal",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is a Lumen runtime value.  Values are immutable once built; the
// interpreter never mutates a value in place.
type Value interface {
	Kind() Kind
}

type (
	Null  struct{}
	Int   int64
	Float float64
	Text  string
	Bool  bool
	List  []Value
	Tuple []Value
)

func (Null) Kind() Kind  { return NullKind }
func (Int) Kind() Kind   { return IntKind }
func (Float) Kind() Kind { return FloatKind }
func (Text) Kind() Kind  { return TextKind }
func (Bool) Kind() Kind  { return BoolKind }
func (List) Kind() Kind  { return ListKind }
func (Tuple) Kind() Kind { return TupleKind }

var (
	True  Value = Bool(true)
	False Value = Bool(false)
)

func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Ctor is a value built by an enum constructor, e.g., Circle(3).
type Ctor struct {
	Tag    string
	Values []Value
}

func (*Ctor) Kind() Kind { return CtorKind }

func NewCtor(tag string, vals ...Value) *Ctor {
	return &Ctor{Tag: tag, Values: vals}
}

type Field struct {
	Name  string
	Value Value
}

// Record is an ordered set of named fields.  Field order is preserved from
// construction so that formatting is stable.
type Record []Field

func (Record) Kind() Kind { return RecordKind }

func (r Record) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy of r with name set to val, appending the field
// if it is not already present.
func (r Record) With(name string, val Value) Record {
	out := make(Record, 0, len(r)+1)
	var found bool
	for _, f := range r {
		if f.Name == name {
			f.Value = val
			found = true
		}
		out = append(out, f)
	}
	if !found {
		out = append(out, Field{name, val})
	}
	return out
}

// Callable is implemented by every value that can appear in call position.
// Effects returns the effect set declared by the callee, which the
// capability gate consults before the call is made.
type Callable interface {
	Value
	Name() string
	Effects() []string
}

// Truthy reports whether v counts as true in a condition.  False, null,
// zero, the empty text, and every signal are false.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Float:
		return v != 0 && !math.IsNaN(float64(v))
	case Text:
		return v != ""
	case Signal:
		return false
	}
	return true
}

// AsInt returns v as an int64 when v is an Int or an integral Float.
func AsInt(v Value) (int64, bool) {
	switch v := v.(type) {
	case Int:
		return int64(v), true
	case Float:
		if f := float64(v); f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	}
	return 0, false
}

// AsText returns the text of a Text value or the sentinel of a signal.
func AsText(v Value) (string, bool) {
	switch v := v.(type) {
	case Text:
		return string(v), true
	case Signal:
		return v.Sentinel(), true
	}
	return "", false
}
