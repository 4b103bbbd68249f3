package run

import (
	"flag"
	"fmt"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/cli/outputflags"
	"github.com/colin-oos/lumen-sub000/cli/runflags"
	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"github.com/colin-oos/lumen-sub000/runtime"
)

var spec = &charm.Spec{
	Name:  "run",
	Usage: "run [ options ] file ...",
	Short: "run a program",
	Long: `
The run command loads the program formed by the given files, evaluates
it, and prints its value unless the value is null.

Effects can be denied with -deny, e.g., "-deny net,fs".  A call to a
denied effect, or to a function declaring one, evaluates to the text
"(denied effect <name>)" and the run continues.  With -strict, the
command exits with an error when any effect was denied.

With -mock, network and clock effects return fixed values so that runs
are reproducible.  -trace prints every evaluated node's Sid and kind and
-hash prints the hash of that trace, which is identical for identical
runs.

Settings may also come from a YAML policy file given with -policy or in
the LUMEN_POLICY environment variable, e.g.,

  deny: [net]
  mock: true
  seed: "abc"
  maxsteps: 10000
  require-hash: "0123456789abcdef"

Flags on the command line take precedence over the policy.  Under
-strict, a run whose hash differs from require-hash fails.
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

type Command struct {
	*root.Command
	runFlags    runflags.Flags
	outputFlags outputflags.Flags
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.runFlags.SetFlags(f)
	c.outputFlags.SetFlags(f)
	return c, nil
}

type jsonResult struct {
	Value   any      `json:"value"`
	Hash    string   `json:"hash"`
	Signals []string `json:"signals"`
	RunID   string   `json:"run_id"`
	Stats   any      `json:"stats"`
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init(&c.runFlags, &c.outputFlags)
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) == 0 {
		return charm.NeedHelp
	}
	prog, err := c.Load(ctx, args)
	if err != nil {
		return err
	}
	engine := storage.NewLocalEngine()
	w, err := c.outputFlags.Open(ctx, engine)
	if err != nil {
		return err
	}
	opts := c.runFlags.Options(c.Logger, nil)
	opts.Engine = engine
	res, err := runtime.Run(ctx, prog, opts)
	if err != nil {
		w.Close()
		return err
	}
	if c.outputFlags.JSON {
		signals := make([]string, 0, len(res.Signals))
		for _, s := range res.Signals {
			signals = append(signals, s.Sentinel())
		}
		err = outputflags.WriteJSON(w, jsonResult{
			Value:   lumen.ToJSON(res.Value),
			Hash:    res.Hash,
			Signals: signals,
			RunID:   res.RunID,
			Stats:   res.Stats,
		})
	} else {
		if _, null := res.Value.(lumen.Null); !null {
			_, err = fmt.Fprintln(w, c.outputFlags.Value(res.Value))
		}
		c.runFlags.Report(w, res)
	}
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return c.runFlags.Check(res)
}
