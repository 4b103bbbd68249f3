package lumen

import (
	"fmt"
	"strconv"
)

// Signal is an in-band failure value.  Signals never unwind the evaluator:
// they flow through a program like any other value and render to the
// sentinel text that Lumen code can observe and compare against.
type Signal interface {
	Value
	Sentinel() string
}

type (
	// DeniedEffect is produced when the capability gate refuses a call.
	DeniedEffect struct {
		Effect string
	}
	// Unbound is produced by a reference to a name with no binding.
	Unbound struct {
		Name string
	}
	// Timeout is produced by an ask whose reply did not arrive in time.
	Timeout struct {
		Ms int64
	}
	// AdapterError is produced when an effect adapter or store loader
	// fails.  Err carries the host error text for logs and is not part
	// of the sentinel.
	AdapterError struct {
		Op  string
		Err string
	}
	NotCallable struct {
		Callee string
	}
	DivideByZero struct{}
	// StepLimit is recorded when the scheduler stops draining because a
	// run processed more messages than allowed.
	StepLimit struct {
		Steps int
	}
	// StackOverflow is produced by a call nested too deeply, almost
	// always unbounded recursion.
	StackOverflow struct {
		Callee string
	}
)

func (*DeniedEffect) Kind() Kind  { return SignalKind }
func (*Unbound) Kind() Kind       { return SignalKind }
func (*Timeout) Kind() Kind       { return SignalKind }
func (*AdapterError) Kind() Kind  { return SignalKind }
func (*NotCallable) Kind() Kind   { return SignalKind }
func (*DivideByZero) Kind() Kind  { return SignalKind }
func (*StepLimit) Kind() Kind     { return SignalKind }
func (*StackOverflow) Kind() Kind { return SignalKind }

func (d *DeniedEffect) Sentinel() string  { return "(denied effect " + d.Effect + ")" }
func (u *Unbound) Sentinel() string       { return "(unbound " + u.Name + ")" }
func (t *Timeout) Sentinel() string       { return "(timeout " + strconv.FormatInt(t.Ms, 10) + ")" }
func (a *AdapterError) Sentinel() string  { return "(" + a.Op + " error)" }
func (n *NotCallable) Sentinel() string   { return "(not-callable " + n.Callee + ")" }
func (*DivideByZero) Sentinel() string    { return "(division by zero)" }
func (s *StepLimit) Sentinel() string     { return fmt.Sprintf("(step limit %d)", s.Steps) }
func (s *StackOverflow) Sentinel() string { return "(stack overflow " + s.Callee + ")" }

func IsSignal(v Value) bool {
	_, ok := v.(Signal)
	return ok
}

// IsDenied reports whether v is a capability denial.
func IsDenied(v Value) bool {
	_, ok := v.(*DeniedEffect)
	return ok
}
