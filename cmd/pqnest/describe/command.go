package describe

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/brimdata/pqnest/cmd/pqnest/root"
	"github.com/brimdata/pqnest/parquetio"
	"github.com/brimdata/pqnest/pkg/charm"
	"github.com/brimdata/pqnest/pkg/storage"
	"golang.org/x/sync/errgroup"
)

var Cmd = &charm.Spec{
	Name:  "describe",
	Usage: "describe [options] file...",
	Short: "show the schema and columns of Parquet files",
	Long: `
The describe command prints the schema of each file as a message
definition followed by one line per leaf column giving the column's
dotted path, its type, and its maximum repetition and definition levels.

Files are opened concurrently.`,
	New: New,
}

type Command struct {
	*root.Command
	columns bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.BoolVar(&c.columns, "columns", true, "list leaf columns after the schema")
	return c, nil
}

func (c *Command) Run(args []string) error {
	if len(args) == 0 {
		return errors.New("describe: at least one file is required")
	}
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	engine := c.Engine()
	out := make([]string, len(args))
	g, ctx := errgroup.WithContext(ctx)
	for k, arg := range args {
		k, arg := k, arg
		g.Go(func() error {
			u, err := storage.ParseURI(arg)
			if err != nil {
				return err
			}
			r, err := parquetio.Open(ctx, engine, u, parquetio.ReaderOpts{Logger: c.Logger}, c.AdapterOpts()...)
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
			defer r.Close()
			out[k] = c.describe(r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for k, s := range out {
		if len(args) > 1 {
			fmt.Printf("%s:\n", args[k])
		}
		fmt.Print(s)
	}
	return nil
}

func (c *Command) describe(r *parquetio.Reader) string {
	var b strings.Builder
	b.WriteString(r.Schema().String())
	fmt.Fprintf(&b, "rows %d, row groups %d\n", r.NumRows(), r.NumRowGroups())
	if c.columns {
		for k, p := range r.Paths() {
			fmt.Fprintf(&b, "%3d %s %s rep=%d def=%d\n", k, p, p.Leaf, p.MaxRepetitionLevel(), p.MaxDefinitionLevel())
		}
	}
	return b.String()
}
