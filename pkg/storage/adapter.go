package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/brimdata/pqnest/pqe"
	"go.uber.org/zap"
)

type Mode int

const (
	ReadMode Mode = iota
	WriteMode
)

func (m Mode) String() string {
	if m == WriteMode {
		return "write"
	}
	return "read"
}

type State int

const (
	Active State = iota
	Faulted
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Faulted:
		return "faulted"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var ErrClosed = errors.New("storage adapter is closed")

type Option func(*Adapter)

// LeaveOpen controls whether closing the adapter leaves the underlying
// stream open.  By default the adapter closes the stream.
func LeaveOpen(leaveOpen bool) Option {
	return func(a *Adapter) {
		a.leaveOpen = leaveOpen
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// Adapter presents a caller-supplied byte stream as the random-access file
// the Parquet engine reads and writes.  A failure of the stream moves the
// adapter to the Faulted state, where every call returns that failure,
// wrapped as a pqe.IO error carrying the stream's original message.
//
// An Adapter is not safe for concurrent use.
type Adapter struct {
	mode      Mode
	state     State
	reader    io.Reader
	writer    io.Writer
	seeker    io.Seeker
	closer    io.Closer
	leaveOpen bool
	logger    *zap.Logger
	metrics   *Metrics
	fault     error
	// offset is the logical position seen by Read, Write, Seek and Tell.
	// pos is the position of the stream, which ReadAt moves without
	// moving offset.
	offset int64
	pos    int64
}

func newAdapter(mode Mode, stream interface{}, opts []Option) *Adapter {
	a := &Adapter{mode: mode, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	if c, ok := stream.(io.Closer); ok {
		a.closer = c
	}
	a.logger = a.logger.With(zap.Stringer("mode", mode))
	return a
}

// NewReadAdapter wraps a readable and seekable stream.  The stream's
// ability to seek is probed with a zero-length relative seek, which leaves
// its position unchanged; a stream that cannot seek is a pqe.Capability
// error.
func NewReadAdapter(stream io.Reader, opts ...Option) (*Adapter, error) {
	seeker, ok := stream.(io.Seeker)
	if !ok {
		return nil, pqe.E(pqe.Capability, "read mode requires a seekable stream")
	}
	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, pqe.E(pqe.Capability, "read mode requires a seekable stream: %w", err)
	}
	a := newAdapter(ReadMode, stream, opts)
	a.reader = stream
	a.seeker = seeker
	a.offset = pos
	a.pos = pos
	return a, nil
}

// NewWriteAdapter wraps a writable stream.  Seeking is not required; Tell
// reports the stream position when the stream can seek and otherwise the
// number of bytes written through the adapter.
func NewWriteAdapter(stream io.Writer, opts ...Option) (*Adapter, error) {
	if stream == nil {
		return nil, pqe.E(pqe.Capability, "write mode requires a writable stream")
	}
	a := newAdapter(WriteMode, stream, opts)
	a.writer = stream
	if seeker, ok := stream.(io.Seeker); ok {
		if pos, err := seeker.Seek(0, io.SeekCurrent); err == nil {
			a.seeker = seeker
			a.offset = pos
			a.pos = pos
		}
	}
	return a, nil
}

func (a *Adapter) Mode() Mode {
	return a.mode
}

func (a *Adapter) State() State {
	return a.state
}

// Fault returns the error that moved the adapter to the Faulted state, if
// any.  The fault remains available after Close.
func (a *Adapter) Fault() error {
	return a.fault
}

func (a *Adapter) check(mode Mode) error {
	switch a.state {
	case Faulted:
		return a.fault
	case Closed:
		if a.fault != nil {
			return a.fault
		}
		return ErrClosed
	}
	if mode != a.mode {
		return pqe.E(pqe.Capability, "%s not supported on an adapter opened for %s", mode, a.mode)
	}
	return nil
}

func (a *Adapter) setFault(err error) error {
	a.fault = pqe.E(pqe.IO, err)
	a.state = Faulted
	a.logger.Warn("Stream fault", zap.Error(err), zap.Int64("offset", a.offset))
	if a.metrics != nil {
		a.metrics.Faults.Inc()
	}
	return a.fault
}

func (a *Adapter) seekStream(pos int64) error {
	if a.pos == pos {
		return nil
	}
	off, err := a.seeker.Seek(pos, io.SeekStart)
	if err != nil {
		return a.setFault(err)
	}
	a.pos = off
	return nil
}

func (a *Adapter) Read(b []byte) (int, error) {
	if err := a.check(ReadMode); err != nil {
		return 0, err
	}
	if err := a.seekStream(a.offset); err != nil {
		return 0, err
	}
	n, err := a.reader.Read(b)
	a.offset += int64(n)
	a.pos = a.offset
	a.countRead(n)
	if err != nil && err != io.EOF {
		return n, a.setFault(err)
	}
	return n, err
}

// ReadAt reads len(b) bytes at offset off without changing the position
// used by Read.  A read that reaches the end of the stream early returns
// io.EOF and does not fault the adapter.
func (a *Adapter) ReadAt(b []byte, off int64) (int, error) {
	if err := a.check(ReadMode); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, pqe.E(pqe.Invalid, "negative offset %d", off)
	}
	if err := a.seekStream(off); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(a.reader, b)
	a.pos += int64(n)
	a.countRead(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, io.EOF
	}
	if err != nil {
		return n, a.setFault(err)
	}
	return n, nil
}

// Write writes all of b.  A short write is a failure.
func (a *Adapter) Write(b []byte) (int, error) {
	if err := a.check(WriteMode); err != nil {
		return 0, err
	}
	n, err := a.writer.Write(b)
	a.offset += int64(n)
	a.pos = a.offset
	if a.metrics != nil {
		a.metrics.BytesWritten.Add(float64(n))
	}
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return n, a.setFault(err)
	}
	return n, nil
}

func (a *Adapter) Seek(offset int64, whence int) (int64, error) {
	if err := a.check(a.mode); err != nil {
		return 0, err
	}
	if a.seeker == nil {
		return 0, pqe.E(pqe.Capability, "stream does not support seeking")
	}
	if whence == io.SeekCurrent {
		offset, whence = a.offset+offset, io.SeekStart
	}
	pos, err := a.seeker.Seek(offset, whence)
	if err != nil {
		return 0, a.setFault(err)
	}
	a.offset = pos
	a.pos = pos
	return pos, nil
}

// Tell returns the current logical position.
func (a *Adapter) Tell() (int64, error) {
	if err := a.check(a.mode); err != nil {
		return 0, err
	}
	return a.offset, nil
}

// Close releases the stream unless the adapter was created with
// LeaveOpen(true).  Close may be called in any state and only the first call
// has an effect.  A failure to close the stream is returned but does not
// replace an earlier fault.
func (a *Adapter) Close() error {
	if a.state == Closed {
		return nil
	}
	a.state = Closed
	if a.leaveOpen || a.closer == nil {
		a.logger.Debug("Adapter closed", zap.Bool("leave_open", a.leaveOpen))
		return nil
	}
	if err := a.closer.Close(); err != nil {
		a.logger.Warn("Stream close failed", zap.Error(err))
		return pqe.E(pqe.IO, err)
	}
	a.logger.Debug("Adapter closed", zap.Bool("leave_open", false))
	return nil
}

func (a *Adapter) countRead(n int) {
	if a.metrics != nil && n > 0 {
		a.metrics.BytesRead.Add(float64(n))
	}
}
