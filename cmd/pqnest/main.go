package main

import (
	"fmt"
	"os"

	"github.com/brimdata/pqnest/cmd/pqnest/cat"
	"github.com/brimdata/pqnest/cmd/pqnest/create"
	"github.com/brimdata/pqnest/cmd/pqnest/describe"
	"github.com/brimdata/pqnest/cmd/pqnest/levels"
	"github.com/brimdata/pqnest/cmd/pqnest/root"
	"github.com/brimdata/pqnest/pkg/charm"
)

func main() {
	pqnest := root.Pqnest
	pqnest.Add(cat.Cmd)
	pqnest.Add(create.Cmd)
	pqnest.Add(describe.Cmd)
	pqnest.Add(levels.Cmd)
	pqnest.Add(charm.Help)
	if err := pqnest.ExecRoot(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
