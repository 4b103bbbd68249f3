package edit

import (
	"errors"
	"flag"
	"fmt"

	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/edit"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/compiler/sfmt"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
)

var spec = &charm.Spec{
	Name:  "edit",
	Usage: "edit -sid sid -with expr file ...",
	Short: "replace a node by its Sid",
	Long: `
The edit command replaces every node of the program whose Sid is given by
-sid with the expression given by -with and prints the resulting program
in canonical form.  Sids can be found with "lumen sid -all".  Since Sids
do not depend on layout, an edit can be prepared against one formatting of
a program and applied to another.

For example,

  lumen edit -sid 3f2a9c0d11e8b7a4 -with "x * 2" prog.lm
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

type Command struct {
	*root.Command
	sid  string
	with string
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.sid, "sid", "", "Sid of the node to replace")
	f.StringVar(&c.with, "with", "", "replacement expression")
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
	if c.sid == "" || c.with == "" {
		return errors.New("both -sid and -with must be given")
	}
	prog, err := c.Load(ctx, args)
	if err != nil {
		return err
	}
	var effects []string
	for _, d := range prog.Decls {
		if e, ok := d.(*ast.EffectDecl); ok {
			effects = append(effects, e.Name)
		}
	}
	with, err := parser.ParseExpr(c.with, effects...)
	if err != nil {
		return fmt.Errorf("-with: %w", err)
	}
	out, ok := edit.ReplaceAndStamp(prog, c.sid, with)
	if !ok {
		return fmt.Errorf("no node with Sid %s", c.sid)
	}
	if p, ok := out.(*ast.Program); ok {
		fmt.Print(sfmt.Program(p))
	} else {
		fmt.Println(sfmt.Expr(out))
	}
	return nil
}
