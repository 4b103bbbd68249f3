package sid

import (
	"flag"
	"fmt"
	"strings"

	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/sfmt"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
)

var spec = &charm.Spec{
	Name:  "sid",
	Usage: "sid [ -all ] file ...",
	Short: "print node identities",
	Long: `
The sid command prints the Sid of the program formed by the given files.
A Sid is a content hash of a node and its children that ignores layout,
so it identifies a piece of a program across reformatting.

With -all, every node is printed in pre-order, one per line, with its
kind and a one-line rendering of its source, e.g., for use with
"lumen edit".
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

type Command struct {
	*root.Command
	all bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.BoolVar(&c.all, "all", false, "print the Sid of every node")
	return c, nil
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
	if !c.all {
		fmt.Println(prog.SID())
		return nil
	}
	ast.Walk(prog, func(e ast.Expr) bool {
		if _, ok := e.(*ast.Program); ok {
			fmt.Printf("%s %s\n", e.SID(), ast.KindOf(e))
			return true
		}
		fmt.Printf("%s %s %s\n", e.SID(), ast.KindOf(e), summary(e))
		return true
	})
	return nil
}

const maxSummary = 60

// summary renders e on one line, shortened to maxSummary characters.
func summary(e ast.Expr) string {
	s := strings.Join(strings.Fields(sfmt.Expr(e)), " ")
	if r := []rune(s); len(r) > maxSummary {
		s = string(r[:maxSummary-3]) + "..."
	}
	return s
}
