// Package runflags holds the flags that control a program run: effect
// denial, mocking, scheduling limits, and how the result is checked.
package runflags

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/units"
	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"github.com/colin-oos/lumen-sub000/runtime"
	"go.uber.org/zap"
)

var ErrStrict = errors.New("strict check failed")

type Flags struct {
	Deny       []string
	Mock       bool
	Seed       string
	MaxSteps   int
	MaxRead    int64
	Strict     bool
	Hash       bool
	Trace      bool
	PolicyPath string
	// Policy is the policy loaded by Init, if any.
	Policy *Policy

	fs *flag.FlagSet
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.fs = fs
	fs.Func("deny", "comma-separated effects to deny (e.g., io,net)", func(s string) error {
		f.Deny = append(f.Deny, splitEffects(s)...)
		return nil
	})
	fs.BoolVar(&f.Mock, "mock", false, "replace network and clock effects with deterministic stubs")
	fs.StringVar(&f.Seed, "seed", "", "scheduler seed (recorded in logs)")
	fs.IntVar(&f.MaxSteps, "maxsteps", 0, "maximum number of actor messages processed (0 for the default)")
	fs.Func("fs.maxread", "maximum size of a file read by a program (e.g., 8MB)", func(s string) error {
		n, err := units.ParseStrictBytes(s)
		if err != nil {
			return err
		}
		f.MaxRead = n
		return nil
	})
	fs.BoolVar(&f.Strict, "strict", false, "exit with an error if an effect was denied or the policy hash does not match")
	fs.BoolVar(&f.Hash, "hash", false, "print the run hash")
	fs.BoolVar(&f.Trace, "trace", false, "print the run trace")
	fs.StringVar(&f.PolicyPath, "policy", "", fmt.Sprintf("YAML policy file (env %s)", PolicyEnv))
}

func splitEffects(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Init loads the policy file and applies its settings to every flag not
// given on the command line.
func (f *Flags) Init() error {
	path := f.PolicyPath
	if path == "" {
		path = os.Getenv(PolicyEnv)
	}
	if path == "" {
		return nil
	}
	p, err := LoadPolicy(context.Background(), storage.NewLocalEngine(), path)
	if err != nil {
		return err
	}
	f.Apply(p)
	return nil
}

// Apply sets the flags not given on the command line from p.
func (f *Flags) Apply(p *Policy) {
	f.Policy = p
	set := make(map[string]bool)
	if f.fs != nil {
		f.fs.Visit(func(fl *flag.Flag) {
			set[fl.Name] = true
		})
	}
	if !set["deny"] {
		f.Deny = p.Deny
	}
	if !set["mock"] {
		f.Mock = p.Mock
	}
	if !set["seed"] {
		f.Seed = p.Seed
	}
	if !set["maxsteps"] {
		f.MaxSteps = p.MaxSteps
	}
}

func (f *Flags) Options(logger *zap.Logger, stdout io.Writer) runtime.Options {
	return runtime.Options{
		DeniedEffects: f.Deny,
		MockEffects:   f.Mock,
		SchedulerSeed: f.Seed,
		MaxSteps:      f.MaxSteps,
		MaxRead:       f.MaxRead,
		Logger:        logger,
		Stdout:        stdout,
	}
}

// Report writes the trace and hash of res to w as requested by -trace
// and -hash.
func (f *Flags) Report(w io.Writer, res *runtime.Result) {
	if f.Trace {
		for _, e := range res.Trace {
			fmt.Fprintf(w, "%s %s\n", e.Sid, e.Note)
		}
	}
	if f.Hash {
		fmt.Fprintln(w, res.Hash)
	}
}

// Check returns an error wrapping ErrStrict under -strict when res
// recorded a denied effect or its hash differs from the one the policy
// requires.
func (f *Flags) Check(res *runtime.Result) error {
	if !f.Strict {
		return nil
	}
	var denied []string
	for _, s := range res.Signals {
		if d, ok := s.(*lumen.DeniedEffect); ok {
			denied = append(denied, d.Effect)
		}
	}
	if len(denied) > 0 {
		return fmt.Errorf("%w: denied effects: %s", ErrStrict, strings.Join(denied, ", "))
	}
	if f.Policy != nil && f.Policy.RequireHash != "" && f.Policy.RequireHash != res.Hash {
		return fmt.Errorf("%w: run hash %s does not match required hash %s", ErrStrict, res.Hash, f.Policy.RequireHash)
	}
	return nil
}
