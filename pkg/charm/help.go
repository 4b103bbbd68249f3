package charm

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

func displayHelp(p path, showHidden bool) {
	writeHelp(os.Stdout, p, showHidden)
}

func writeHelp(w io.Writer, p path, showHidden bool) {
	inst := p.last()
	spec := inst.spec
	names := make([]string, 0, len(p))
	for _, i := range p {
		names = append(names, i.spec.Name)
	}
	fmt.Fprintf(w, "NAME\n    %s - %s\n\n", strings.Join(names, " "), spec.Short)
	fmt.Fprintf(w, "USAGE\n    %s\n", spec.Usage)
	if inst.flags != nil {
		writeFlags(w, inst.flags, p, showHidden)
	}
	var children []*Spec
	for _, c := range spec.children {
		if !c.Hidden || showHidden {
			children = append(children, c)
		}
	}
	if len(children) > 0 {
		fmt.Fprint(w, "\nCOMMANDS\n")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, c := range children {
			fmt.Fprintf(tw, "    %s\t%s\n", c.Name, c.Short)
		}
		tw.Flush()
	}
	if long := strings.TrimSpace(spec.Long); long != "" {
		fmt.Fprintf(w, "\nDESCRIPTION\n%s\n", indent(long, "    "))
	}
}

func writeFlags(w io.Writer, flags *flag.FlagSet, p path, showHidden bool) {
	hidden := make(map[string]bool)
	redacted := make(map[string]bool)
	for _, i := range p {
		for _, name := range splitList(i.spec.HiddenFlags) {
			hidden[name] = true
		}
		for _, name := range splitList(i.spec.RedactedFlags) {
			redacted[name] = true
		}
	}
	var lines []string
	flags.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "h", "help", "hidden":
			return
		}
		if hidden[f.Name] && !showHidden {
			return
		}
		line := fmt.Sprintf("    -%s\t%s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && !redacted[f.Name] {
			line += fmt.Sprintf(" (default %q)", f.DefValue)
		}
		lines = append(lines, line)
	})
	if len(lines) == 0 {
		return
	}
	fmt.Fprint(w, "\nOPTIONS\n")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, line := range lines {
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for k, line := range lines {
		if line != "" {
			lines[k] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
