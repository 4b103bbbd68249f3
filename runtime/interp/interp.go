// Package interp is the Lumen evaluator.  It walks a Sid-stamped syntax
// tree directly, schedules actor mailboxes cooperatively on the calling
// goroutine, and consults the effect gate before every effectful call.
//
// Evaluation is total.  Failures such as a denied effect or an unbound
// name are signal values that flow through the program like any other
// value, and every signal produced is also collected for the caller.
package interp

import (
	"context"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/runtime/effect"
	"github.com/colin-oos/lumen-sub000/runtime/trace"
	"go.uber.org/zap"
)

const (
	DefaultMaxSteps = 1_000_000
	MaxStackDepth   = 10_000
)

// Host connects the evaluator to the outside world.
type Host interface {
	// Invoke runs effect.op.  Failures are returned as signals.
	Invoke(ctx context.Context, effect, op string, args []lumen.Value) lumen.Value
	// LoadStore returns the rows of the store with the given config.
	LoadStore(ctx context.Context, name, config string) (lumen.List, error)
}

type Config struct {
	DeniedEffects []string
	// MaxSteps bounds the number of messages processed.  Zero means
	// DefaultMaxSteps.
	MaxSteps int
	Host     Host
	Logger   *zap.Logger
}

type Stats struct {
	Nodes    int `json:"nodes"`
	Messages int `json:"messages"`
	Dropped  int `json:"dropped"`
	Denied   int `json:"denied"`
}

type Interpreter struct {
	ctx    context.Context
	host   Host
	logger *zap.Logger
	gate   *effect.Gate
	trace  *trace.Recorder

	env     *env
	frame   int
	frames  int
	module  string
	globals map[string]lumen.Value
	depth   int

	actors    map[string]*actor
	mailboxes map[string]*mailbox
	order     []string
	maxSteps  int
	halted    bool

	signals []lumen.Signal
	stats   Stats
}

func New(ctx context.Context, conf Config) *Interpreter {
	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSteps := conf.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Interpreter{
		ctx:       ctx,
		host:      conf.Host,
		logger:    logger,
		gate:      effect.NewGate(conf.DeniedEffects),
		trace:     trace.NewRecorder(),
		globals:   make(map[string]lumen.Value),
		actors:    make(map[string]*actor),
		mailboxes: make(map[string]*mailbox),
		maxSteps:  maxSteps,
	}
}

// Run evaluates a program and returns its value.  Run may be called
// again with further programs; declarations, actors, and pending
// messages carry over, which is how the REPL works.
func (i *Interpreter) Run(p *ast.Program) lumen.Value {
	return i.Eval(p)
}

func (i *Interpreter) Trace() *trace.Recorder {
	return i.trace
}

// Signals returns the signals produced so far in the order they were
// produced.  A signal merely passed along is not counted again.
func (i *Interpreter) Signals() []lumen.Signal {
	return i.signals
}

func (i *Interpreter) Stats() Stats {
	s := i.stats
	s.Nodes = i.trace.Len()
	return s
}

// Lookup returns the value bound to name at the top level.
func (i *Interpreter) Lookup(name string) (lumen.Value, bool) {
	return i.lookup(name)
}

func (i *Interpreter) signal(s lumen.Signal) lumen.Value {
	i.signals = append(i.signals, s)
	if _, ok := s.(*lumen.DeniedEffect); ok {
		i.stats.Denied++
	}
	i.logger.Debug("signal", zap.String("sentinel", s.Sentinel()))
	return s
}
