package charm

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kr/text"
	"golang.org/x/term"
)

var Help = &Spec{
	Name:  "help",
	Usage: "help [command]",
	Short: "display help for a command",
	Long: `
For help on the top-level command just type "help".
For help on a subcommand, type "help command" where command is the name of
the command.  For help on command nested further, type "help cmd1 cmd2" and
so forth.`,
	HiddenFlags: "v",
	New: func(parent Command, f *flag.FlagSet) (Command, error) {
		c := &HelpCommand{}
		f.BoolVar(&c.vflag, "v", false, "show hidden commands and flags")
		return c, nil
	},
}

type HelpCommand struct {
	vflag bool
}

// flagMap maps each name in the comma-separated list flags to true.
func flagMap(flags string) map[string]bool {
	m := make(map[string]bool)
	for _, name := range strings.Split(flags, ",") {
		if name = strings.TrimSpace(name); name != "" {
			m[name] = true
		}
	}
	return m
}

func (c *HelpCommand) Run(args []string) error {
	p, err := search(Help.Root(), args)
	if err != nil {
		return err
	}
	displayHelp(p, c.vflag)
	return nil
}

// search instantiates the commands named by args without running them.
func search(root *Spec, args []string) (path, error) {
	inst, err := newInstance(nil, root)
	if err != nil {
		return nil, err
	}
	p := path{inst}
	for k, arg := range args {
		spec := inst.spec.lookupSub(arg)
		if spec == nil {
			return nil, fmt.Errorf("no such command: %s", strings.Join(args[:k+1], " "))
		}
		if inst, err = newInstance(inst.command, spec); err != nil {
			return nil, err
		}
		p = append(p, inst)
	}
	return p, nil
}

const tab = "    "

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func displayHelp(p path, showHidden bool) {
	writeHelp(os.Stderr, p, showHidden, terminalWidth())
}

func writeHelp(w io.Writer, p path, showHidden bool, width int) {
	spec := p.last().spec
	helpItem(w, "NAME", spec.Name+" - "+spec.Short)
	helpDesc(w, "USAGE", spec.Usage, width)
	helpList(w, "OPTIONS", options(p, showHidden))
	if commands := subCommands(spec, showHidden); len(commands) > 0 {
		helpList(w, "COMMANDS", commands)
	}
	if spec.Long != "" {
		helpDesc(w, "DESCRIPTION", spec.Long, width)
	}
}

func header(heading string) string {
	return "\033[1m" + heading + "\033[0m"
}

func helpItem(w io.Writer, heading, body string) {
	fmt.Fprint(w, header(heading)+"\n"+tab+body+"\n\n")
}

func helpList(w io.Writer, heading string, lines []string) {
	fmt.Fprint(w, header(heading)+"\n"+tab+strings.Join(lines, "\n"+tab)+"\n\n")
}

func helpDesc(w io.Writer, heading, body string, width int) {
	fmt.Fprint(w, header(heading)+"\n"+formatParagraph(body, tab, width-len(tab)-5))
}

func formatParagraph(body, indent string, lineWidth int) string {
	var chunks []string
	for _, paragraph := range strings.Split(strings.TrimSpace(body), "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if len(paragraph) >= lineWidth {
			paragraph = text.Wrap(paragraph, lineWidth)
		}
		chunks = append(chunks, strings.ReplaceAll(paragraph, "\n", "\n"+indent))
	}
	return indent + strings.Join(chunks, "\n\n"+indent) + "\n\n"
}

func subCommands(spec *Spec, showHidden bool) []string {
	var lines []string
	for _, cmd := range spec.children {
		name := cmd.Name
		if cmd.Hidden {
			if !showHidden {
				continue
			}
			name = "[" + name + "]"
		}
		lines = append(lines, name+" - "+cmd.Short)
	}
	return lines
}

// options lists the flags of the last command followed by those of each
// ancestor, under a heading naming the ancestor.
func options(p path, showHidden bool) []string {
	lines := p.last().options(showHidden)
	if len(lines) == 0 {
		lines = []string{"no flags for this command"}
	}
	for k := len(p) - 2; k >= 0; k-- {
		opts := p[k].options(showHidden)
		if len(opts) == 0 {
			continue
		}
		lines = append(lines, "", "["+p[:k+1].pathname()+" flags]")
		lines = append(lines, opts...)
	}
	return lines
}
