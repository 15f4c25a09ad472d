package parquetio

import (
	"io"

	"github.com/brimdata/pqnest/pkg/storage"
	"github.com/brimdata/pqnest/pqe"
)

// engineStream is the adapter as seen by the engine.  It hides Close so
// that the binding alone decides when the stream is released.
type engineStream struct {
	a *storage.Adapter
}

func (s engineStream) Read(b []byte) (int, error) {
	return s.a.Read(b)
}

func (s engineStream) ReadAt(b []byte, off int64) (int, error) {
	return s.a.ReadAt(b, off)
}

func (s engineStream) Write(b []byte) (int, error) {
	return s.a.Write(b)
}

func (s engineStream) Seek(offset int64, whence int) (int64, error) {
	return s.a.Seek(offset, whence)
}

var _ io.ReadWriteSeeker = engineStream{}

// guard runs an engine call.  A panic inside the engine becomes an error,
// and when the adapter has faulted the caller receives the adapter's fault,
// which carries the stream's own message, in place of whatever the engine
// made of it.
func guard(a *storage.Adapter, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pqe.E("parquet engine: %v", r)
		}
		if fault := a.Fault(); fault != nil {
			err = fault
		}
	}()
	return f()
}
