// Package charm is a small framework for command-line tools built from a
// tree of commands, each with its own flag set.
package charm

import (
	"errors"
	"flag"
)

var (
	// NeedHelp, returned by a command's Run, displays the command's help.
	NeedHelp = errors.New("help")
	// ErrNoRun, returned by a command's Run, means a sub-command was
	// expected in its arguments.
	ErrNoRun = errors.New("no run method")
)

// Constructor creates a command, given the already configured command of
// the parent, and registers the command's flags.
type Constructor func(parent Command, fs *flag.FlagSet) (Command, error)

type Command interface {
	Run(args []string) error
}

// Spec describes a command and the commands nested beneath it.
type Spec struct {
	Name  string
	Usage string
	Short string
	Long  string
	New   Constructor
	// Hidden omits the command from help unless hidden items are shown.
	Hidden bool
	// HiddenFlags is a comma-separated list of flags omitted from help
	// unless hidden items are shown.
	HiddenFlags string

	parent   *Spec
	children []*Spec
}

func (s *Spec) Add(child *Spec) {
	child.parent = s
	s.children = append(s.children, child)
}

// Root returns the top of the tree holding s.
func (s *Spec) Root() *Spec {
	for ; s.parent != nil; s = s.parent {
	}
	return s
}

func (s *Spec) lookupSub(name string) *Spec {
	for _, child := range s.children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// ExecRoot parses args from the top of the command tree and runs the
// command they select.  A command that returns NeedHelp, or a -h flag
// anywhere along the path, displays help for the selected command.
func (s *Spec) ExecRoot(args []string) error {
	p, rest, showHidden, err := parse(s, args, nil)
	if err == nil {
		err = p.run(rest)
	}
	if err == NeedHelp && len(p) > 0 {
		displayHelp(p, showHidden)
		return nil
	}
	return err
}
