// Package fs holds file system helpers for the file storage engine.
package fs

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

var ErrAborted = errors.New("file replacement aborted")

// Replacer writes the new content of a file to a hidden temporary file
// beside it.  Close syncs the temporary file and renames it over the
// target, so readers see either the old content or all of the new.  Abort,
// or a failed write, discards the temporary file and leaves the target as
// it was.
type Replacer struct {
	tmp    *os.File
	target string
	perm   os.FileMode
	err    error
	closed bool
}

func NewFileReplacer(target string, perm os.FileMode) (*Replacer, error) {
	target, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &Replacer{tmp: tmp, target: target, perm: perm}, nil
}

// Name returns the absolute path of the file being replaced.
func (r *Replacer) Name() string {
	return r.target
}

func (r *Replacer) Write(b []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.tmp.Write(b)
	if err != nil {
		r.err = err
	}
	return n, err
}

func (r *Replacer) Seek(offset int64, whence int) (int64, error) {
	return r.tmp.Seek(offset, whence)
}

// Abort discards everything written.  It is a no-op after Close.
func (r *Replacer) Abort() {
	if r.err == nil {
		r.err = ErrAborted
	}
	r.Close()
}

// Close installs the new content unless the replacement failed or was
// aborted, in which case it returns the failure (nil after Abort).
func (r *Replacer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	name := r.tmp.Name()
	if r.err != nil {
		err := multierr.Append(r.tmp.Close(), os.Remove(name))
		if r.err == ErrAborted {
			return err
		}
		return multierr.Append(r.err, err)
	}
	err := multierr.Combine(r.tmp.Sync(), r.tmp.Close(), os.Chmod(name, r.perm))
	if err == nil {
		err = os.Rename(name, r.target)
	}
	if err != nil {
		os.Remove(name)
	}
	return err
}

// MkdirParent creates the directory holding path if it does not exist.
func MkdirParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
