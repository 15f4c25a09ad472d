// Package logflags binds the logger configuration to command-line flags.
package logflags

import (
	"flag"

	"github.com/brimdata/pqnest/pkg/logger"
	"go.uber.org/zap"
)

type Flags struct {
	Config logger.Config
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.Config.Level = zap.WarnLevel
	f.Config.Mode = logger.FileModeAppend
	fs.Var(&f.Config.Level, "log.level", "logging level (debug, info, warn, error)")
	fs.StringVar(&f.Config.Path, "log.path", "stderr", "where to send logs: stderr, stdout or a file path")
	fs.Var(&f.Config.Mode, "log.filemode", "how a log file is opened: append, truncate or rotate")
	fs.StringVar(&f.Config.Name, "log.name", "", "only emit logs from the logger of this name (e.g., pqnest.storage)")
	fs.BoolVar(&f.Config.DevMode, "log.devmode", false, "development mode, where dpanic logs panic")
}

// Open returns the logger described by the flags, named after the program.
func (f *Flags) Open(name string) (*zap.Logger, error) {
	l, err := logger.New(f.Config)
	if err != nil {
		return nil, err
	}
	return l.Named(name), nil
}
