package format

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/compiler/sfmt"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"go.uber.org/zap"
)

var spec = &charm.Spec{
	Name:  "fmt",
	Usage: "fmt [ -w ] file ...",
	Short: "print programs in canonical form",
	Long: `
The fmt command parses each file and prints it in canonical form: one
declaration per line, two-space indentation, and only the parentheses
that precedence requires.  Formatting never changes a node's Sid.

With -w, each file is rewritten in place instead of printed.  Comments
are not preserved.
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

type Command struct {
	*root.Command
	write bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.BoolVar(&c.write, "w", false, "write result to each file instead of stdout")
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
	engine := storage.NewLocalEngine()
	sources := make([][]byte, len(args))
	var effects []string
	for k, path := range args {
		u, err := storage.ParseURI(path)
		if err != nil {
			return err
		}
		if sources[k], err = storage.Get(ctx, engine, u, 0); err != nil {
			return err
		}
		declared, _ := parser.DeclaredEffects(sources[k])
		effects = append(effects, declared...)
	}
	for k, path := range args {
		p, err := parser.Parse(path, sources[k], effects...)
		if err != nil {
			return err
		}
		out := sfmt.Program(p)
		if !c.write {
			fmt.Print(out)
			continue
		}
		if out == string(sources[k]) {
			continue
		}
		if err := writeFile(ctx, engine, path, out); err != nil {
			return err
		}
		c.Logger.Info("formatted", zap.String("file", path))
	}
	return nil
}

func writeFile(ctx context.Context, engine storage.Engine, path, text string) error {
	if path == "-" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}
	u, err := storage.ParseURI(path)
	if err != nil {
		return err
	}
	w, err := engine.Put(ctx, u)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
