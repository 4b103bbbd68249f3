package root

import (
	"context"
	"flag"

	"github.com/colin-oos/lumen-sub000/cli"
	"github.com/colin-oos/lumen-sub000/compiler"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
)

var Lumen = &charm.Spec{
	Name:  "lumen",
	Usage: "lumen [ options ] <command> [ options ] [ file ... ]",
	Short: "run and inspect Lumen programs",
	Long: `
The "lumen" command runs Lumen programs and provides the tools around them:
a canonical formatter, a static checker, dumps of the syntax tree and of
node identities (Sids), Sid-targeted program edits, an interactive shell,
and an HTTP service.

Source files may be file system paths, "-" for standard input, or HTTP,
HTTPS, or S3 URLs.  When several files are given they form one program:
their declarations are concatenated in command-line order and an effect
declared in any file may be used in all of them.

Program output from io.print goes to standard output, followed by the
value of the program.  Log messages go to standard error unless
-log.path is given.
`,
	New: New,
}

type Command struct {
	cli.Flags
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	c.SetFlags(f)
	return c, nil
}

func (c *Command) Run(args []string) error {
	return charm.NoRun(args)
}

// Load reads and parses the program made of the files in paths.  Init
// must have been called.
func (c *Command) Load(ctx context.Context, paths []string) (*ast.Program, error) {
	loader := compiler.NewLoader(storage.NewLocalEngine())
	loader.Logger = c.Logger
	return loader.Load(ctx, paths...)
}
