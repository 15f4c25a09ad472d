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
}

func (*rootCommand) Run(args []string) error {
	if len(args) == 0 {
		return NeedHelp
	}
	return ErrNoRun
}

type echoCommand struct {
	parent *rootCommand
	upper  bool
	got    *[]string
}

func (c *echoCommand) Run(args []string) error {
	out := args
	if c.upper {
		out = nil
		for _, a := range args {
			out = append(out, strings.ToUpper(a))
		}
	}
	if c.parent.verbose {
		out = append([]string{"verbose"}, out...)
	}
	*c.got = out
	return nil
}

func testTree(got *[]string) *Spec {
	root := &Spec{
		Name:  "tool",
		Usage: "tool <command>",
		Short: "test tool",
		New: func(_ Command, f *flag.FlagSet) (Command, error) {
			c := &rootCommand{}
			f.BoolVar(&c.verbose, "v", false, "verbose")
			return c, nil
		},
	}
	root.Add(&Spec{
		Name:  "echo",
		Usage: "echo [-u] args...",
		Short: "echo arguments",
		Long:  "Echo prints its arguments.",
		New: func(parent Command, f *flag.FlagSet) (Command, error) {
			c := &echoCommand{parent: parent.(*rootCommand), got: got}
			f.BoolVar(&c.upper, "u", false, "upper case")
			return c, nil
		},
	})
	root.Add(&Spec{Name: "secret", Short: "hidden", Hidden: true, New: func(Command, *flag.FlagSet) (Command, error) {
		return &rootCommand{}, nil
	}})
	return root
}

func TestExecRoot(t *testing.T) {
	var got []string
	root := testTree(&got)
	require.NoError(t, root.ExecRoot([]string{"-v", "echo", "-u", "a", "b"}))
	assert.Equal(t, []string{"verbose", "A", "B"}, got)

	require.NoError(t, root.ExecRoot([]string{"echo", "c"}))
	assert.Equal(t, []string{"c"}, got)

	err := root.ExecRoot([]string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no such sub-command "nope"`)

	err = root.ExecRoot([]string{"echo", "-x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-x")
}

func TestHelp(t *testing.T) {
	var got []string
	root := testTree(&got)
	p, err := search(root, []string{"echo"})
	require.NoError(t, err)
	var b strings.Builder
	writeHelp(&b, p, false, 80)
	s := b.String()
	assert.Contains(t, s, "echo - echo arguments")
	assert.Contains(t, s, "-u upper case")
	assert.Contains(t, s, "[tool flags]")
	assert.Contains(t, s, "Echo prints its arguments.")

	p, err = search(root, nil)
	require.NoError(t, err)
	b.Reset()
	writeHelp(&b, p, false, 80)
	assert.Contains(t, b.String(), "echo - echo arguments")
	assert.NotContains(t, b.String(), "secret")
	b.Reset()
	writeHelp(&b, p, true, 80)
	assert.Contains(t, b.String(), "[secret] - hidden")

	_, err = search(root, []string{"echo", "more"})
	assert.EqualError(t, err, "no such command: echo more")
}

func TestFormatParagraph(t *testing.T) {
	s := formatParagraph("one two three four five six\n\nseven", "  ", 10)
	assert.Equal(t, "  one two\n  three four\n  five six\n\n  seven\n\n", s)
}
