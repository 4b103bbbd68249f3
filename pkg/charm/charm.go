// Package charm is a minimal CLI framework in the style of cobra and
// urfave/cli.  A command tree is built from Specs; parsing a command line
// constructs each command on the path, which registers its flags, and
// runs the last one.
package charm

import (
	"errors"
	"flag"
)

var (
	NeedHelp   = errors.New("help")
	ErrNoRun   = errors.New("no run method")
	ErrNotLeaf = errors.New("no internal leaf found")
)

type Constructor func(Command, *flag.FlagSet) (Command, error)

type Command interface {
	Run([]string) error
}

// An interior command that implements SetLeafFlags has flags that apply
// only when it runs itself and are not inherited by its children.
type InternalLeaf interface {
	SetLeafFlags(*flag.FlagSet)
}

type Spec struct {
	Name  string
	Usage string
	Short string
	Long  string
	New   Constructor
	// Hidden hides this command from help.
	Hidden bool
	// HiddenFlags (comma-separated) are left out of help unless -hidden
	// is given.
	HiddenFlags string
	// RedactedFlags (comma-separated) are shown in help without their
	// default value, e.g., for a flag holding a credential.
	RedactedFlags string
	// InternalLeaf is set for commands with leaf flags.  It is not
	// inferred from the InternalLeaf interface because children often
	// embed their parent command and so implement it too.
	InternalLeaf bool
	children     []*Spec
	parent       *Spec
}

func (s *Spec) Add(child *Spec) {
	s.children = append(s.children, child)
	child.parent = s
}

func (s *Spec) lookupSub(name string) *Spec {
	for _, child := range s.children {
		if name == child.Name {
			return child
		}
	}
	return nil
}

// Exec parses args against the tree rooted at s and runs the selected
// command.  A command returning NeedHelp has its help displayed instead.
func (s *Spec) Exec(args []string) error {
	path, rest, showHidden, err := parse(s, args, nil, true)
	if err == ErrNotLeaf {
		path, rest, showHidden, err = parse(s, args, nil, false)
	}
	if err == nil {
		err = path.run(rest)
	}
	if err == NeedHelp {
		path, err := parseHelp(s, args)
		if err != nil {
			return err
		}
		displayHelp(path, showHidden)
		return nil
	}
	return err
}

// NoRun is the Run method of a command that exists only to hold
// subcommands.
func NoRun(args []string) error {
	if len(args) == 0 {
		return NeedHelp
	}
	return ErrNoRun
}
