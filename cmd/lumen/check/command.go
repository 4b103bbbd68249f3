package check

import (
	"flag"
	"fmt"

	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/compiler/check"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
)

var spec = &charm.Spec{
	Name:  "check",
	Usage: "check file ...",
	Short: "report effect and declaration errors without running",
	Long: `
The check command reports problems the runtime would otherwise surface as
signals: effects used by a function or actor that does not declare them,
calls to functions raising more effects than the caller declares, actor
handler guards that perform effects (and so never match), constructors
that name no declared variant or have the wrong arity, and spawns of
undeclared actors.

Each problem is printed with the Sid of the offending node.  The command
exits with an error if any problem is found.
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

type Command struct {
	*root.Command
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	return &Command{Command: parent.(*root.Command)}, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
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
	diags := check.Check(prog)
	for _, d := range diags {
		fmt.Printf("%s: %s\n", d.Sid, d.Msg)
	}
	switch n := len(diags); n {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("1 problem found")
	default:
		return fmt.Errorf("%d problems found", n)
	}
}
