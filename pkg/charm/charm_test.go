package charm

import (
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rootCommand struct {
	verbose bool
	leaf    string
	ran     []string
}

func (r *rootCommand) Run(args []string) error {
	r.ran = args
	return nil
}

func (r *rootCommand) SetLeafFlags(f *flag.FlagSet) {
	f.StringVar(&r.leaf, "c", "", "leaf only")
}

type childCommand struct {
	*rootCommand
	count int
}

func (c *childCommand) Run(args []string) error {
	c.ran = append([]string{"child"}, args...)
	return nil
}

func tree(root *rootCommand) *Spec {
	spec := &Spec{
		Name:         "tool",
		Usage:        "tool [options] command",
		Short:        "does things",
		InternalLeaf: true,
		HiddenFlags:  "secret",
		New: func(_ Command, f *flag.FlagSet) (Command, error) {
			f.BoolVar(&root.verbose, "v", false, "verbose")
			f.Bool("secret", false, "not shown")
			return root, nil
		},
	}
	spec.Add(&Spec{
		Name:  "child",
		Usage: "child [-n count]",
		Short: "a child",
		Long:  "The child command.",
		New: func(parent Command, f *flag.FlagSet) (Command, error) {
			c := &childCommand{rootCommand: parent.(*rootCommand)}
			f.IntVar(&c.count, "n", 1, "count")
			return c, nil
		},
	})
	return spec
}

func TestExecLeaf(t *testing.T) {
	root := &rootCommand{}
	require.NoError(t, tree(root).Exec([]string{"-v", "-c", "query", "a", "b"}))
	assert.True(t, root.verbose)
	assert.Equal(t, "query", root.leaf)
	assert.Equal(t, []string{"a", "b"}, root.ran)
}

func TestExecChild(t *testing.T) {
	root := &rootCommand{}
	require.NoError(t, tree(root).Exec([]string{"child", "-n", "3", "-v", "x"}))
	assert.True(t, root.verbose)
	assert.Equal(t, []string{"child", "x"}, root.ran)

	// Leaf flags of the parent do not apply to the child.
	err := tree(&rootCommand{}).Exec([]string{"child", "-c", "q"})
	assert.ErrorContains(t, err, "flag provided but not defined: -c")
}

func TestHelp(t *testing.T) {
	spec := tree(&rootCommand{})
	p, err := parseHelp(spec, []string{"help", "child"})
	require.NoError(t, err)
	var b strings.Builder
	writeHelp(&b, p, false)
	help := b.String()
	assert.Contains(t, help, "tool child - a child")
	assert.Contains(t, help, "-n")
	assert.Contains(t, help, "-v")
	assert.NotContains(t, help, "-secret")
	assert.Contains(t, help, "    The child command.")

	p, err = parseHelp(spec, nil)
	require.NoError(t, err)
	b.Reset()
	writeHelp(&b, p, true)
	assert.Contains(t, b.String(), "COMMANDS")
	assert.Contains(t, b.String(), "-secret")
}

func TestNoRun(t *testing.T) {
	assert.Equal(t, NeedHelp, NoRun(nil))
	assert.Equal(t, ErrNoRun, NoRun([]string{"x"}))
}
