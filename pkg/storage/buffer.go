package storage

import (
	"errors"
	"io"
)

// Buffer is an in-memory, growable stream supporting reads, writes and
// seeks at arbitrary positions.  A closed Buffer fails every call but keeps
// its contents, which remain available from Bytes.
type Buffer struct {
	buf    []byte
	off    int64
	closed bool
}

var _ io.ReadWriteSeeker = (*Buffer)(nil)
var _ io.Closer = (*Buffer)(nil)

var errBufferClosed = errors.New("buffer is closed")

func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b}
}

func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) Len() int {
	return len(b.buf)
}

func (b *Buffer) IsClosed() bool {
	return b.closed
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.closed {
		return 0, errBufferClosed
	}
	if b.off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.off:])
	b.off += int64(n)
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, errBufferClosed
	}
	end := b.off + int64(len(p))
	if end > int64(len(b.buf)) {
		if end > int64(cap(b.buf)) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[b.off:], p)
	b.off = end
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	if b.closed {
		return 0, errBufferClosed
	}
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += b.off
	case io.SeekEnd:
		offset += int64(len(b.buf))
	default:
		return 0, errors.New("storage.Buffer.Seek: invalid whence")
	}
	if offset < 0 {
		return 0, errors.New("storage.Buffer.Seek: negative position")
	}
	b.off = offset
	return offset, nil
}

func (b *Buffer) Close() error {
	b.closed = true
	return nil
}
