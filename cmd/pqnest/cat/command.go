package cat

import (
	"bufio"
	"errors"
	"flag"
	"os"

	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/cmd/pqnest/root"
	"github.com/brimdata/pqnest/parquetio"
	"github.com/brimdata/pqnest/pkg/charm"
	"github.com/brimdata/pqnest/pkg/storage"
)

var Cmd = &charm.Spec{
	Name:  "cat",
	Usage: "cat [options] file",
	Short: "print the records or one column of a Parquet file",
	Long: `
The cat command reconstructs the nested values of a Parquet file and
prints one value per line.  By default whole records are printed.  With
-c, only the values of the named leaf column are printed, each shaped by
the lists and structs enclosing that column.`,
	New: New,
}

type Command struct {
	*root.Command
	column    string
	max       int
	batchSize int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.column, "c", "", "dotted path of the leaf column to print")
	f.IntVar(&c.max, "n", -1, "maximum number of values to print (-1 for all)")
	f.IntVar(&c.batchSize, "batchsize", 0, "number of levels read from a column at a time")
	return c, nil
}

type valueReader interface {
	Read() (*pqnest.Value, error)
}

func (c *Command) Run(args []string) error {
	if len(args) != 1 {
		return errors.New("cat: a single file is required")
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
	opts := parquetio.ReaderOpts{BatchSize: c.batchSize, Logger: c.Logger}
	r, err := parquetio.Open(ctx, c.Engine(), u, opts, c.AdapterOpts()...)
	if err != nil {
		return err
	}
	defer r.Close()
	w := bufio.NewWriter(os.Stdout)
	if c.column == "" {
		err = c.print(w, r.Records())
	} else {
		err = c.printColumn(w, r)
	}
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	return err
}

func (c *Command) printColumn(w *bufio.Writer, r *parquetio.Reader) error {
	col, err := r.LookupColumn(c.column)
	if err != nil {
		return err
	}
	for k := 0; k < r.NumRowGroups() && c.max != 0; k++ {
		g, err := r.RowGroup(k)
		if err != nil {
			return err
		}
		cr, err := g.Column(col)
		if err != nil {
			return err
		}
		if err := c.print(w, cr); err != nil {
			return err
		}
	}
	return nil
}

// print writes values from vr until it is exhausted or the -n limit is
// reached, decrementing the limit as it goes.
func (c *Command) print(w *bufio.Writer, vr valueReader) error {
	for c.max != 0 {
		val, err := vr.Read()
		if err != nil {
			return err
		}
		if val == nil {
			return nil
		}
		w.WriteString(val.String())
		w.WriteByte('\n')
		if c.max > 0 {
			c.max--
		}
	}
	return nil
}
