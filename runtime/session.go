package runtime

import (
	"context"
	"strings"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/compiler/sid"
	"github.com/colin-oos/lumen-sub000/runtime/interp"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// Session evaluates a program one piece at a time against a single
// interpreter.  Bindings, actors, and custom effect declarations made by
// earlier input remain visible to later input.
type Session struct {
	interp  *interp.Interpreter
	logger  *zap.Logger
	effects []string
	seen    int
}

func NewSession(ctx context.Context, opts Options) *Session {
	logger := opts.logger().With(zap.String("run_id", ksuid.New().String()))
	return &Session{
		interp: opts.interpreter(ctx, logger),
		logger: logger,
	}
}

// Eval parses and runs src.  It returns the value of src and the signals
// produced while running it.  A parse error leaves the session unchanged.
func (s *Session) Eval(src string) (lumen.Value, []lumen.Signal, error) {
	p, err := parser.Parse("", []byte(src), s.effects...)
	if err != nil {
		return nil, nil, err
	}
	if effects, err := parser.DeclaredEffects([]byte(src)); err == nil {
		s.effects = append(s.effects, effects...)
	}
	sid.Assign(p)
	val := s.interp.Run(p)
	all := s.interp.Signals()
	signals := all[s.seen:]
	s.seen = len(all)
	return val, signals, nil
}

// Incomplete reports whether src fails to parse only because it ends too
// early, e.g., inside an open block, so that more input may complete it.
func (s *Session) Incomplete(src string) bool {
	_, err := parser.Parse("", []byte(src), s.effects...)
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "end of input")
}

func (s *Session) Lookup(name string) (lumen.Value, bool) {
	return s.interp.Lookup(name)
}

// Hash returns the trace hash of everything evaluated so far.
func (s *Session) Hash() string {
	return s.interp.Trace().Hash()
}

func (s *Session) Stats() interp.Stats {
	return s.interp.Stats()
}
