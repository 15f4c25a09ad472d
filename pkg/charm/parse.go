package charm

import (
	"errors"
	"flag"
	"io"
)

// parse walks args down the command tree starting at spec.  Each command
// named is instantiated with its parent's command and has its flags parsed
// before its children are considered, so a child's constructor sees a fully
// configured parent.  parse returns the path of instances and the arguments
// left for the last one.
func parse(spec *Spec, args []string, parent Command) (path, []string, bool, error) {
	var p path
	var showHidden bool
	for {
		inst, err := newInstance(parent, spec)
		if err != nil {
			return p, nil, showHidden, err
		}
		var help, hidden bool
		inst.flags.BoolVar(&help, "h", false, "display help")
		inst.flags.BoolVar(&hidden, "hidden", false, "show hidden commands and flags")
		p = append(p, inst)
		rest, err := parseFlags(inst.flags, args)
		showHidden = showHidden || hidden
		if err != nil {
			return p, nil, showHidden, err
		}
		if help {
			return p, nil, showHidden, NeedHelp
		}
		if len(rest) == 0 {
			return p, rest, showHidden, nil
		}
		child := spec.lookupSub(rest[0])
		if child == nil {
			return p, rest, showHidden, nil
		}
		spec, parent, args = child, inst.command, rest[1:]
	}
}

func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, NeedHelp
		}
		return nil, err
	}
	return fs.Args(), nil
}
