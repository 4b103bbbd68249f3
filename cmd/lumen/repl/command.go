package repl

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/cli/runflags"
	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
	"github.com/colin-oos/lumen-sub000/runtime"
	"github.com/peterh/liner"
	"golang.org/x/term"
)

var spec = &charm.Spec{
	Name:  "repl",
	Usage: "repl [ options ]",
	Short: "evaluate programs interactively",
	Long: `
The repl command reads Lumen declarations and expressions from the
terminal and evaluates each as it is entered.  Bindings, functions,
actors, and effect declarations persist from one entry to the next.  An
entry that is not yet complete, such as an open block, continues on the
next line.

The run flags (-deny, -mock, -maxsteps, -policy, and so on) apply to the
whole session.  Commands:

  :hash    print the trace hash of the session so far
  :stats   print evaluation counters
  :quit    leave the session (as does end of input)
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

const (
	historyFile = ".lumen_history"
	prompt      = "lumen> "
	promptCont  = "   ... "
)

type Command struct {
	*root.Command
	runFlags runflags.Flags
	color    bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.runFlags.SetFlags(f)
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init(&c.runFlags)
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) > 0 {
		return errors.New("repl takes no arguments")
	}
	c.color = term.IsTerminal(int(os.Stdout.Fd()))
	session := runtime.NewSession(ctx, c.runFlags.Options(c.Logger, os.Stdout))

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()
	for {
		src, ok := read(ln, session)
		if !ok {
			fmt.Println()
			return nil
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit":
			return nil
		case ":hash":
			fmt.Println(session.Hash())
			continue
		case ":stats":
			s := session.Stats()
			fmt.Printf("nodes %d messages %d dropped %d denied %d\n", s.Nodes, s.Messages, s.Dropped, s.Denied)
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		val, signals, err := session.Eval(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, c.red(err.Error()))
			continue
		}
		if _, null := val.(lumen.Null); !null {
			s := lumen.Format(val)
			if lumen.IsSignal(val) {
				s = c.red(lumen.Display(val))
			}
			fmt.Println(s)
		}
		for _, sig := range signals {
			if lumen.Value(sig) != val {
				fmt.Fprintln(os.Stderr, c.red("signal "+sig.Sentinel()))
			}
		}
	}
}

// read returns one complete entry.  Lines are accumulated while the
// input so far ends in the middle of a construct.
func read(ln *liner.State, session *runtime.Session) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = promptCont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !session.Incomplete(src) {
			return src, true
		}
	}
}

func (c *Command) red(s string) string {
	if c.color {
		return "\x1b[31m" + s + "\x1b[0m"
	}
	return s
}
