package create

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/brimdata/pqnest/cli/writerflags"
	"github.com/brimdata/pqnest/cmd/pqnest/root"
	"github.com/brimdata/pqnest/ndjson"
	"github.com/brimdata/pqnest/parquetio"
	"github.com/brimdata/pqnest/pkg/charm"
	"github.com/brimdata/pqnest/pkg/storage"
	"github.com/brimdata/pqnest/schema"
	"go.uber.org/zap"
)

var Cmd = &charm.Spec{
	Name:  "create",
	Usage: "create -schema file -o file [options] [input...]",
	Short: "create a Parquet file from newline-delimited JSON",
	Long: `
The create command reads newline-delimited JSON objects from each input,
or from standard input when no input is given, and writes them as records
of a new Parquet file with the schema read from the -schema file.  The
schema is a message definition such as

  message m {
    required int64 id;
    optional group tags (LIST) {
      repeated group list {
        optional binary element (STRING);
      }
    }
  }

Each JSON object must hold only fields of the schema.  Lists are JSON
arrays, groups are JSON objects, and timestamps and dates are either
strings or integers counting the column's unit since the Unix epoch.

Records are written in row groups of -rowgroup records.  Writer settings
may also be read from a YAML file given with -config.`,
	New: New,
}

type Command struct {
	*root.Command
	writerFlags writerflags.Flags
	schemaFile  string
	output      string
	rowGroup    int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.writerFlags.SetFlags(f)
	f.StringVar(&c.schemaFile, "schema", "", "file holding the message definition of the output")
	f.StringVar(&c.output, "o", "", "output file or URI")
	f.IntVar(&c.rowGroup, "rowgroup", 64*1024, "maximum number of records per row group")
	return c, nil
}

func (c *Command) Run(args []string) error {
	if c.schemaFile == "" {
		return errors.New("create: a schema must be specified with -schema")
	}
	if c.output == "" {
		return errors.New("create: an output must be specified with -o")
	}
	if c.rowGroup <= 0 {
		return errors.New("create: -rowgroup must be positive")
	}
	ctx, cleanup, err := c.Init(&c.writerFlags)
	if err != nil {
		return err
	}
	defer cleanup()
	text, err := os.ReadFile(c.schemaFile)
	if err != nil {
		return err
	}
	sch, err := schema.ParseDefinition(string(text))
	if err != nil {
		return fmt.Errorf("%s: %w", c.schemaFile, err)
	}
	u, err := storage.ParseURI(c.output)
	if err != nil {
		return err
	}
	engine := c.Engine()
	opts := c.writerFlags.Options()
	opts.Logger = c.Logger
	w, err := parquetio.Create(ctx, engine, u, sch, opts, c.AdapterOpts()...)
	if err != nil {
		return err
	}
	err = c.load(ctx, engine, w, args)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (c *Command) load(ctx context.Context, engine storage.Engine, w *parquetio.Writer, args []string) error {
	if len(args) == 0 {
		return c.copy(ctx, w, "stdin", os.Stdin)
	}
	for _, arg := range args {
		u, err := storage.ParseURI(arg)
		if err != nil {
			return err
		}
		r, err := engine.Get(ctx, u)
		if err != nil {
			return err
		}
		err = c.copy(ctx, w, arg, r)
		r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Command) copy(ctx context.Context, w *parquetio.Writer, name string, r io.Reader) error {
	nr := ndjson.NewReader(r, w.Schema())
	var total int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		recs, err := nr.ReadAll(c.rowGroup)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if len(recs) == 0 {
			break
		}
		if err := w.WriteRecords(recs); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		total += len(recs)
	}
	c.Logger.Info("Loaded input", zap.String("input", name), zap.Int("records", total))
	return nil
}
