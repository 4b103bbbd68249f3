package charm

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// path is the chain of commands selected by a command line, from the
// root to the command that runs.
type path []*instance

type instance struct {
	spec    *Spec
	command Command
	flags   *flag.FlagSet
}

func (p path) last() *instance {
	return p[len(p)-1]
}

func (p path) run(args []string) error {
	return p.last().command.Run(args)
}

// parse walks args down the command tree.  Every command on the path
// registers its flags in one flag set so that a flag may be given after
// the name of any subcommand below the command that defines it.
//
// When leaf is true, a command marked InternalLeaf also registers its
// leaf flags, and ErrNotLeaf is returned if a subcommand follows it.
func parse(spec *Spec, args []string, parent Command, leaf bool) (path, []string, bool, error) {
	flags := flag.NewFlagSet(spec.Name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var help, showHidden bool
	flags.BoolVar(&help, "h", false, "display help")
	flags.BoolVar(&help, "help", false, "display help")
	flags.BoolVar(&showHidden, "hidden", false, "show hidden options")
	var p path
	for s := spec; ; {
		cmd, err := s.New(parent, flags)
		if err != nil {
			return nil, nil, false, err
		}
		if leaf && s.InternalLeaf {
			if l, ok := cmd.(InternalLeaf); ok {
				l.SetLeafFlags(flags)
			}
		}
		p = append(p, &instance{spec: s, command: cmd, flags: flags})
		if err := flags.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return p, nil, showHidden, NeedHelp
			}
			return nil, nil, false, fmt.Errorf("%s: %w", s.Name, err)
		}
		if help {
			return p, nil, showHidden, NeedHelp
		}
		args = flags.Args()
		if len(args) == 0 {
			return p, args, showHidden, nil
		}
		if args[0] == "help" {
			return p, nil, showHidden, NeedHelp
		}
		child := s.lookupSub(args[0])
		if child == nil {
			return p, args, showHidden, nil
		}
		if leaf && s.InternalLeaf {
			return nil, nil, false, ErrNotLeaf
		}
		parent, s, args = cmd, child, args[1:]
	}
}

// parseHelp finds the command named by args, which may name subcommands
// and contain flags, or may start with "help".
func parseHelp(spec *Spec, args []string) (path, error) {
	p := path{{spec: spec}}
	for _, arg := range args {
		if arg == "help" || strings.HasPrefix(arg, "-") {
			continue
		}
		child := p.last().spec.lookupSub(arg)
		if child == nil {
			break
		}
		p = append(p, &instance{spec: child})
	}
	// Construct each command to learn its flags.
	flags := flag.NewFlagSet(spec.Name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var parent Command
	for k, inst := range p {
		cmd, err := inst.spec.New(parent, flags)
		if err != nil {
			return nil, err
		}
		if k == len(p)-1 && inst.spec.InternalLeaf {
			if l, ok := cmd.(InternalLeaf); ok {
				l.SetLeafFlags(flags)
			}
		}
		inst.command, inst.flags = cmd, flags
		parent = cmd
	}
	return p, nil
}
