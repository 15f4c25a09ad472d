// Package writerflags binds the Parquet writer settings to command-line
// flags and an optional YAML file.
package writerflags

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/alecthomas/units"
	"github.com/brimdata/pqnest/parquetio"
	"gopkg.in/yaml.v3"
)

type Flags struct {
	parquetio.WriterOpts
	configFile string
	pageSize   string
	set        map[string]bool
	fs         *flag.FlagSet
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.configFile, "config", "", "YAML file of writer settings (flags given on the command line take precedence)")
	fs.StringVar(&f.Compression, "compression", "snappy", "page compression (none, snappy, gzip, zstd, brotli)")
	fs.StringVar(&f.pageSize, "pagesize", "1MiB", "target size of data pages, as '64KiB' or '1MB', etc.")
	fs.BoolVar(&f.Dictionary, "dictionary", false, "enable dictionary encoding")
	fs.IntVar(&f.BatchSize, "batchsize", 1024, "number of levels handed to the engine per call")
}

// Init is called after flags have been parsed.
func (f *Flags) Init() error {
	f.set = make(map[string]bool)
	if f.fs != nil {
		f.fs.Visit(func(fl *flag.Flag) {
			f.set[fl.Name] = true
		})
	}
	if f.configFile != "" {
		if err := f.load(f.configFile); err != nil {
			return err
		}
	}
	if f.configFile == "" || f.set["pagesize"] {
		size, err := units.ParseStrictBytes(f.pageSize)
		if err != nil {
			return fmt.Errorf("-pagesize: %w", err)
		}
		f.DataPageSize = size
	}
	if f.DataPageSize <= 0 {
		return errors.New("page size must be positive")
	}
	if _, err := parquetio.ParseCompression(f.Compression); err != nil {
		return err
	}
	return nil
}

type config struct {
	parquetio.WriterOpts `yaml:",inline"`
	PageSize             string `yaml:"page_size"`
}

func (f *Flags) load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var c config
	c.WriterOpts = f.WriterOpts
	if err := yaml.Unmarshal(b, &c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if c.PageSize != "" {
		size, err := units.ParseStrictBytes(c.PageSize)
		if err != nil {
			return fmt.Errorf("%s: page_size: %w", path, err)
		}
		c.DataPageSize = size
	}
	// Flags given explicitly override the file.
	if f.set["compression"] {
		c.Compression = f.Compression
	}
	if f.set["dictionary"] {
		c.Dictionary = f.Dictionary
	}
	if f.set["batchsize"] {
		c.BatchSize = f.BatchSize
	}
	if c.DataPageSize == 0 {
		if c.DataPageSize, err = units.ParseStrictBytes(f.pageSize); err != nil {
			return fmt.Errorf("-pagesize: %w", err)
		}
	}
	f.WriterOpts = c.WriterOpts
	return nil
}

func (f *Flags) Options() parquetio.WriterOpts {
	return f.WriterOpts
}
