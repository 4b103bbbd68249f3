// Package runtime runs Lumen programs.  It assembles an interpreter, the
// effect adapters, and the trace recorder for a single run and reports
// what the run produced.
package runtime

import (
	"context"
	"errors"
	"io"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/sid"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"github.com/colin-oos/lumen-sub000/runtime/adapter"
	"github.com/colin-oos/lumen-sub000/runtime/interp"
	"github.com/colin-oos/lumen-sub000/runtime/trace"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

var ErrNoProgram = errors.New("no program")

type Options struct {
	DeniedEffects []string
	// MockEffects replaces network and clock adapters with deterministic
	// stubs.
	MockEffects bool
	// SchedulerSeed is recorded in the log.  Scheduling is always in
	// registration order, so the seed does not change a run.
	SchedulerSeed string
	MaxSteps      int
	// MaxRead caps the bytes read by fs.read and file-backed stores.
	MaxRead int64
	Logger  *zap.Logger
	Engine  storage.Engine
	Stdout  io.Writer
	// Adapters, if set, is used as is and the adapter options above
	// (MockEffects, MaxRead, Engine, and Stdout) are ignored.
	Adapters *adapter.Registry
}

type Result struct {
	Value   lumen.Value    `json:"-"`
	Trace   []trace.Entry  `json:"trace"`
	Hash    string         `json:"hash"`
	Signals []lumen.Signal `json:"-"`
	Stats   interp.Stats   `json:"stats"`
	RunID   string         `json:"run_id"`
}

// Denied reports whether the run recorded a capability denial.
func (r *Result) Denied() bool {
	for _, s := range r.Signals {
		if lumen.IsDenied(s) {
			return true
		}
	}
	return false
}

// Run evaluates prog to completion.  The program is stamped with Sids if
// its root has none.  An error is returned only when there is nothing to
// run; failures inside the program are values in the result.
func Run(ctx context.Context, prog *ast.Program, opts Options) (*Result, error) {
	if prog == nil {
		return nil, ErrNoProgram
	}
	runID := ksuid.New().String()
	logger := opts.logger().With(zap.String("run_id", runID))
	if sid.Of(prog) == "" {
		sid.Assign(prog)
	}
	logger.Debug("run started",
		zap.String("program", sid.Of(prog)),
		zap.String("seed", opts.SchedulerSeed),
		zap.Strings("denied", opts.DeniedEffects))
	in := opts.interpreter(ctx, logger)
	val := in.Run(prog)
	res := &Result{
		Value:   val,
		Trace:   in.Trace().Entries(),
		Hash:    in.Trace().Hash(),
		Signals: in.Signals(),
		Stats:   in.Stats(),
		RunID:   runID,
	}
	logger.Debug("run finished",
		zap.String("hash", res.Hash),
		zap.Int("nodes", res.Stats.Nodes),
		zap.Int("messages", res.Stats.Messages),
		zap.Int("signals", len(res.Signals)))
	return res, nil
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) interpreter(ctx context.Context, logger *zap.Logger) *interp.Interpreter {
	adapters := o.Adapters
	if adapters == nil {
		adapters = adapter.NewRegistry(adapter.Options{
			Stdout:  o.Stdout,
			Engine:  o.Engine,
			Mock:    o.MockEffects,
			MaxRead: o.MaxRead,
			Logger:  logger,
		})
	}
	return interp.New(ctx, interp.Config{
		DeniedEffects: o.DeniedEffects,
		MaxSteps:      o.MaxSteps,
		Host:          adapters,
		Logger:        logger,
	})
}
