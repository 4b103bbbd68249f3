package interp

import (
	"time"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/runtime/match"
	"go.uber.org/zap"
)

// actor is a registered actor definition.  Exactly one of param and
// handlers is set.
type actor struct {
	param    *ast.ActorDecl
	handlers *ast.ActorDeclNew
	state    lumen.Record
	env      *env
	module   string
}

// Sink receives the reply to an ask.
type Sink struct {
	Done  bool
	Value lumen.Value
}

type envelope struct {
	value lumen.Value
	sink  *Sink
}

type mailbox struct {
	queue []envelope
}

// mailbox returns the mailbox for name, creating it if needed.  Mailboxes
// are drained in the order they were created.
func (i *Interpreter) mailbox(name string) *mailbox {
	if mb, ok := i.mailboxes[name]; ok {
		return mb
	}
	mb := &mailbox{}
	i.mailboxes[name] = mb
	i.order = append(i.order, name)
	return mb
}

func (i *Interpreter) registerParamActor(d *ast.ActorDecl) {
	i.actors[d.Name] = &actor{param: d, env: i.snapshot(), module: i.module}
	i.mailbox(d.Name)
}

func (i *Interpreter) registerHandlerActor(d *ast.ActorDeclNew) {
	state := make(lumen.Record, 0, len(d.State))
	for _, slot := range d.State {
		state = append(state, lumen.Field{Name: slot.Name, Value: i.Eval(slot.Init)})
	}
	i.actors[d.Name] = &actor{handlers: d, state: state, env: i.snapshot(), module: i.module}
	i.mailbox(d.Name)
}

// State returns a copy of the state of the named handler actor.
func (i *Interpreter) State(name string) (lumen.Record, bool) {
	a, ok := i.actors[name]
	if !ok || a.handlers == nil {
		return nil, false
	}
	return append(lumen.Record(nil), a.state...), true
}

// actorRef converts an actor reference to a mailbox name.  A reference is
// the text returned by spawn; a bare actor name parses as a constructor
// with no arguments and is accepted too.
func (i *Interpreter) actorRef(v lumen.Value) string {
	switch v := v.(type) {
	case lumen.Text:
		return string(v)
	case *lumen.Ctor:
		if len(v.Values) == 0 {
			return v.Tag
		}
	}
	return ""
}

func (i *Interpreter) send(name string, msg lumen.Value, sink *Sink) bool {
	mb, ok := i.mailboxes[name]
	if !ok {
		i.stats.Dropped++
		i.logger.Debug("message to unknown mailbox dropped", zap.String("actor", name))
		return false
	}
	mb.queue = append(mb.queue, envelope{msg, sink})
	return true
}

func (i *Interpreter) evalAsk(e *ast.Ask) lumen.Value {
	name := i.actorRef(i.Eval(e.Actor))
	msg := i.Eval(e.Message)
	if _, ok := i.mailboxes[name]; !ok {
		if e.Timeout != nil {
			return i.signal(&lumen.Timeout{Ms: *e.Timeout})
		}
		return lumen.Null{}
	}
	sink := &Sink{}
	i.send(name, msg, sink)
	var deadline time.Time
	if e.Timeout != nil {
		deadline = time.Now().Add(time.Duration(*e.Timeout) * time.Millisecond)
	}
	expired := func() bool {
		return !deadline.IsZero() && !time.Now().Before(deadline)
	}
	done := func() bool {
		return sink.Done || expired()
	}
	// Once a drain makes no progress the scheduler is idle and no reply
	// can arrive, so waiting longer is pointless.
	for !done() && i.drain(done) {
	}
	if sink.Done {
		return sink.Value
	}
	if e.Timeout != nil {
		return i.signal(&lumen.Timeout{Ms: *e.Timeout})
	}
	return lumen.Null{}
}

// drain processes messages until a pass over every mailbox delivers
// nothing or until stop, checked before each delivery, returns true.
// Each pass delivers at most one message per mailbox.  Drain reports
// whether any message was delivered.
func (i *Interpreter) drain(stop func() bool) bool {
	var progressed bool
	for !i.halted {
		var delivered bool
		// Mailboxes created during the pass are visited in the same pass.
		for k := 0; k < len(i.order); k++ {
			if stop != nil && stop() {
				return progressed
			}
			name := i.order[k]
			mb := i.mailboxes[name]
			if len(mb.queue) == 0 {
				continue
			}
			if i.stats.Messages >= i.maxSteps {
				i.halted = true
				i.logger.Debug("scheduler step limit reached", zap.Int("steps", i.maxSteps))
				i.signal(&lumen.StepLimit{Steps: i.maxSteps})
				return progressed
			}
			env := mb.queue[0]
			mb.queue[0] = envelope{}
			mb.queue = mb.queue[1:]
			i.stats.Messages++
			i.deliver(name, env)
			delivered, progressed = true, true
		}
		if !delivered {
			break
		}
	}
	return progressed
}

func (i *Interpreter) deliver(name string, msg envelope) {
	a, ok := i.actors[name]
	switch {
	case !ok:
		i.stats.Dropped++
		i.logger.Debug("message to mailbox with no actor dropped", zap.String("actor", name))
	case a.param != nil:
		i.deliverParam(a, msg)
	default:
		i.deliverHandler(name, a, msg)
	}
}

func (i *Interpreter) deliverParam(a *actor, msg envelope) {
	restore := i.enterFrame(a.env, a.module)
	defer restore()
	if p := a.param.Param; p != nil {
		i.bind(p.Name, msg.value)
	}
	i.gate.Push(a.param.Effects)
	defer i.gate.Pop()
	i.Eval(a.param.Body)
}

// deliverHandler runs the first handler whose pattern matches the message
// and whose guard holds.  State slots are bound in the handler's frame
// and read back when the body finishes.
func (i *Interpreter) deliverHandler(name string, a *actor, msg envelope) {
	decl := a.handlers
	for _, h := range decl.Handlers {
		binds, ok := match.Match(h.Pattern, msg.value, i)
		if !ok {
			continue
		}
		out, ok := i.runHandler(a, h, binds)
		if !ok {
			continue
		}
		if msg.sink != nil && h.Reply != "" {
			msg.sink.Done = true
			msg.sink.Value = out
		}
		return
	}
	i.stats.Dropped++
	i.logger.Debug("no handler matched message", zap.String("actor", name), zap.String("message", lumen.Format(msg.value)))
}

func (i *Interpreter) runHandler(a *actor, h ast.Handler, binds match.Bindings) (lumen.Value, bool) {
	restore := i.enterFrame(a.env, a.module)
	defer restore()
	for _, f := range a.state {
		i.bind(f.Name, f.Value)
	}
	i.bindAll(binds)
	i.gate.Push(a.handlers.Effects)
	defer i.gate.Pop()
	if h.Guard != nil && !i.guard(h.Guard) {
		return nil, false
	}
	out := i.Eval(h.Body)
	state := make(lumen.Record, len(a.state))
	for k, f := range a.state {
		state[k] = f
		if b, ok := i.env.lookup(f.Name); ok {
			state[k].Value = b.value
		}
	}
	a.state = state
	return out, true
}
