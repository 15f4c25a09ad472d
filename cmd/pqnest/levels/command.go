package levels

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/brimdata/pqnest/cmd/pqnest/root"
	"github.com/brimdata/pqnest/parquetio"
	"github.com/brimdata/pqnest/pkg/charm"
	"github.com/brimdata/pqnest/pkg/storage"
)

var Cmd = &charm.Spec{
	Name:  "levels",
	Usage: "levels -c column [options] file",
	Short: "dump the repetition and definition levels of a column",
	Long: `
The levels command prints the raw triples of a leaf column, one per line,
as the repetition level, the definition level, and the value when the
definition level is the column's maximum.  It is most useful for debugging
files whose nested values do not reconstruct as expected.`,
	New: New,
}

type Command struct {
	*root.Command
	column string
	group  int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.column, "c", "", "dotted path of the leaf column")
	f.IntVar(&c.group, "g", -1, "row group to dump (-1 for all)")
	return c, nil
}

func (c *Command) Run(args []string) error {
	if len(args) != 1 {
		return errors.New("levels: a single file is required")
	}
	if c.column == "" {
		return errors.New("levels: a column must be specified with -c")
	}
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	u, err := storage.ParseURI(args[0])
	if err != nil {
		return err
	}
	r, err := parquetio.Open(ctx, c.Engine(), u, parquetio.ReaderOpts{Logger: c.Logger}, c.AdapterOpts()...)
	if err != nil {
		return err
	}
	defer r.Close()
	col, err := r.LookupColumn(c.column)
	if err != nil {
		return err
	}
	first, last := 0, r.NumRowGroups()
	if c.group >= 0 {
		first, last = c.group, c.group+1
	}
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	path := r.Paths()[col]
	fmt.Fprintf(w, "# %s rep<=%d def<=%d\n", path, path.MaxRepetitionLevel(), path.MaxDefinitionLevel())
	for k := first; k < last; k++ {
		g, err := r.RowGroup(k)
		if err != nil {
			return err
		}
		cr, err := g.Column(col)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# row group %d\n", k)
		for {
			t, err := cr.NextTriple()
			if err != nil {
				return err
			}
			if t == nil {
				break
			}
			fmt.Fprintln(w, t)
		}
	}
	return nil
}
