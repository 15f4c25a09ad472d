package root

import (
	"context"
	"flag"
	"os"

	"github.com/brimdata/pqnest/cli"
	"github.com/brimdata/pqnest/cli/logflags"
	"github.com/brimdata/pqnest/pkg/charm"
	"github.com/brimdata/pqnest/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

var Pqnest = &charm.Spec{
	Name:  "pqnest",
	Usage: "pqnest <command> [options] [arguments...]",
	Short: "read and write nested Parquet data",
	Long: `
pqnest is a command-line tool for inspecting and creating Parquet files
whose columns hold nested lists and structs.  Files may be local paths or
s3:// and http(s):// URIs.`,
	New: New,
}

type Command struct {
	charm.Command
	cli.Flags
	LogFlags logflags.Flags
	Logger   *zap.Logger
	Metrics  *storage.Metrics
	stats    bool
	registry *prometheus.Registry
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	c.SetFlags(f)
	c.LogFlags.SetFlags(f)
	f.BoolVar(&c.stats, "stats", false, "print storage metrics to stderr on exit")
	return c, nil
}

// Init initializes the global flags along with all, opens the logger, and
// returns a context canceled on interrupt and a cleanup function that must
// be called when the command finishes.
func (c *Command) Init(all ...cli.Initializer) (context.Context, func(), error) {
	ctx, cleanup, err := c.Flags.Init(all...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.LogFlags.Open(Pqnest.Name)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	c.Logger = logger
	c.registry = prometheus.NewRegistry()
	c.Metrics = storage.NewMetrics(c.registry)
	return ctx, func() {
		if c.stats {
			c.printStats()
		}
		c.Logger.Sync()
		cleanup()
	}, nil
}

func (c *Command) printStats() {
	families, err := c.registry.Gather()
	if err != nil {
		c.Logger.Warn("Gathering metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		expfmt.MetricFamilyToText(os.Stderr, mf)
	}
}

// Engine returns the storage engine used to resolve URIs.
func (c *Command) Engine() storage.Engine {
	return storage.NewLocalEngine()
}

// AdapterOpts returns the options for adapters opened by commands.
func (c *Command) AdapterOpts() []storage.Option {
	return []storage.Option{storage.WithLogger(c.Logger.Named("storage")), storage.WithMetrics(c.Metrics)}
}

func (c *Command) Run(args []string) error {
	_, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) == 0 {
		return charm.NeedHelp
	}
	return charm.ErrNoRun
}
