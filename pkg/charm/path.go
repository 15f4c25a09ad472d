package charm

import (
	"fmt"
	"strings"
)

// path is the chain of instances from the root command to the command
// selected by the arguments.
type path []*instance

func (p path) last() *instance {
	return p[len(p)-1]
}

func (p path) pathname() string {
	var b strings.Builder
	for k, inst := range p {
		if k > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(inst.spec.Name)
	}
	return b.String()
}

// run runs the selected command with args.  A command with children that
// declines to run reports which child names were expected.
func (p path) run(args []string) error {
	err := p.last().command.Run(args)
	if err != ErrNoRun {
		return err
	}
	var visible []string
	for _, child := range p.last().spec.children {
		if !child.Hidden {
			visible = append(visible, child.Name)
		}
	}
	choices := strings.Join(visible, ", ")
	if len(args) == 0 {
		return fmt.Errorf("%q: requires a sub-command: %s", p.pathname(), choices)
	}
	return fmt.Errorf("%q: no such sub-command %q: options are: %s", p.pathname(), args[0], choices)
}
