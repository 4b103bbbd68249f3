// Package adapter connects Lumen effects and stores to the host: the
// terminal, the network, the clock, storage, and databases.
package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"go.uber.org/zap"
)

// Func implements one effect operation.  An error becomes an adapter
// error signal in the program.
type Func func(ctx context.Context, args []lumen.Value) (lumen.Value, error)

type Options struct {
	Stdout io.Writer
	Engine storage.Engine
	// Mock replaces network and clock access with deterministic stubs.
	Mock bool
	// MaxRead caps the bytes read by fs.read and by file-backed stores.
	// Zero means no limit.
	MaxRead int64
	Logger  *zap.Logger
	Client  *http.Client
}

// Registry maps effect operations to their implementations.
type Registry struct {
	opts  Options
	funcs map[string]Func
}

func NewRegistry(opts Options) *Registry {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Engine == nil {
		opts.Engine = storage.NewLocalEngine()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	r := &Registry{opts: opts, funcs: make(map[string]Func)}
	r.Register("io", "print", r.print)
	r.Register("net", "get", r.netGet)
	r.Register("http", "get", r.httpGet)
	r.Register("http", "post", r.httpPost)
	r.Register("time", "now", r.now)
	r.Register("time", "sleep", r.sleep)
	r.Register("time", "format", formatTime)
	r.Register("time", "parse", parseTime)
	r.Register("fs", "read", r.fsRead)
	r.Register("fs", "write", r.fsWrite)
	r.Register("db", "load", r.dbLoad)
	return r
}

// Register adds or replaces the implementation of effect.op.
func (r *Registry) Register(effect, op string, fn Func) {
	r.funcs[effect+"."+op] = fn
}

// Ops returns the registered operations in sorted order.
func (r *Registry) Ops() []string {
	ops := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		ops = append(ops, name)
	}
	slices.Sort(ops)
	return ops
}

// Invoke runs effect.op.  Operations with no implementation, including
// every operation of a custom effect, fail.
func (r *Registry) Invoke(ctx context.Context, effect, op string, args []lumen.Value) lumen.Value {
	name := effect + "." + op
	fn, ok := r.funcs[name]
	if !ok {
		return r.fail(name, fmt.Errorf("no adapter for %s", name))
	}
	out, err := fn(ctx, args)
	if err != nil {
		return r.fail(name, err)
	}
	return out
}

func (r *Registry) fail(op string, err error) lumen.Value {
	r.opts.Logger.Warn("effect failed", zap.String("op", op), zap.Error(err))
	return &lumen.AdapterError{Op: op, Err: err.Error()}
}

func arg(args []lumen.Value, k int) lumen.Value {
	if k < len(args) {
		return args[k]
	}
	return lumen.Null{}
}

func textArg(args []lumen.Value, k int) string {
	return lumen.Display(arg(args, k))
}

func intArg(args []lumen.Value, k int) (int64, error) {
	n, ok := lumen.AsInt(arg(args, k))
	if !ok {
		return 0, fmt.Errorf("argument %d: expected a number, found %s", k+1, lumen.Format(arg(args, k)))
	}
	return n, nil
}
