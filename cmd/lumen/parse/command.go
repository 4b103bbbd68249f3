package parse

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
	"github.com/kr/pretty"
)

var spec = &charm.Spec{
	Name:  "parse",
	Usage: "parse [ -json | -pretty ] file ...",
	Short: "print the syntax tree of a program",
	Long: `
The parse command prints the Sid-stamped syntax tree of the program formed
by the given files.  By default, and with -json, the tree is printed as
indented JSON, the form accepted by the HTTP service and by tools that
consume Lumen programs.  With -pretty, it is printed as Go values, which
is mostly useful when working on the interpreter itself.
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

type Command struct {
	*root.Command
	json   bool
	pretty bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.BoolVar(&c.json, "json", false, "print the tree as JSON (default)")
	f.BoolVar(&c.pretty, "pretty", false, "print the tree as Go values")
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
	if c.json && c.pretty {
		return errors.New("cannot use both -json and -pretty")
	}
	prog, err := c.Load(ctx, args)
	if err != nil {
		return err
	}
	if c.pretty {
		fmt.Printf("%# v\n", pretty.Formatter(prog))
		return nil
	}
	b, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
