package parquetio

import (
	"context"

	"github.com/brimdata/pqnest/pkg/storage"
	"github.com/brimdata/pqnest/schema"
	"go.uber.org/zap"
)

type aborter interface {
	Abort()
}

// Create opens u for write through engine and starts a file with schema sch.
// The returned Writer owns the stream.  If the file cannot be started, the
// stream is aborted when it supports that, so no partial object is left.
func Create(ctx context.Context, engine storage.Engine, u *storage.URI, sch *schema.Schema, opts WriterOpts, adapterOpts ...storage.Option) (*Writer, error) {
	if err := sch.Validate(); err != nil {
		return nil, err
	}
	wc, err := engine.Put(ctx, u)
	if err != nil {
		return nil, err
	}
	adapterOpts = append([]storage.Option{storage.WithLogger(logger(opts.Logger))}, adapterOpts...)
	out, err := storage.NewWriteAdapter(wc, adapterOpts...)
	if err != nil {
		wc.Close()
		return nil, err
	}
	w, err := NewWriter(out, sch, opts)
	if err != nil {
		if a, ok := wc.(aborter); ok {
			a.Abort()
		}
		out.Close()
		return nil, err
	}
	w.logger.Debug("Created", zap.Stringer("uri", u))
	return w, nil
}

// Open opens u for read through engine.  Objects that can read at an offset
// and report their size but cannot seek are given a seeker.
func Open(ctx context.Context, engine storage.Engine, u *storage.URI, opts ReaderOpts, adapterOpts ...storage.Option) (*Reader, error) {
	r, err := engine.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	adapterOpts = append([]storage.Option{storage.WithLogger(logger(opts.Logger))}, adapterOpts...)
	in, err := storage.NewReadAdapter(storage.OpenSeekable(r), adapterOpts...)
	if err != nil {
		r.Close()
		return nil, err
	}
	rdr, err := NewReader(in, opts)
	if err != nil {
		in.Close()
		return nil, err
	}
	return rdr, nil
}
