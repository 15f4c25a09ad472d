package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/brimdata/pqnest/pqe"
)

// HTTPEngine reads objects from servers that honor byte range requests.
// Each ReadAt is one ranged GET, so a Parquet reader can be opened over an
// object without downloading all of it.
type HTTPEngine struct {
	Client *http.Client
}

var _ Engine = (*HTTPEngine)(nil)

func NewHTTP() *HTTPEngine {
	return &HTTPEngine{Client: http.DefaultClient}
}

func (h *HTTPEngine) head(ctx context.Context, u *URI) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp, nil
}

func (h *HTTPEngine) Get(ctx context.Context, u *URI) (Reader, error) {
	resp, err := h.head(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := statusError(u, resp); err != nil {
		return nil, err
	}
	if resp.ContentLength < 0 {
		return nil, pqe.E(pqe.Capability, "%s: server did not report object size", u)
	}
	return &httpObject{ctx: ctx, client: h.Client, uri: u.String(), size: resp.ContentLength}, nil
}

func (*HTTPEngine) Put(_ context.Context, u *URI) (io.WriteCloser, error) {
	return nil, ErrNotSupported
}

func (*HTTPEngine) Delete(_ context.Context, u *URI) error {
	return ErrNotSupported
}

func (h *HTTPEngine) Size(ctx context.Context, u *URI) (int64, error) {
	resp, err := h.head(ctx, u)
	if err != nil {
		return 0, err
	}
	if err := statusError(u, resp); err != nil {
		return 0, err
	}
	return resp.ContentLength, nil
}

func (h *HTTPEngine) Exists(ctx context.Context, u *URI) (bool, error) {
	resp, err := h.head(ctx, u)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return true, statusError(u, resp)
}

func statusError(u *URI, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return nil
	case http.StatusNotFound:
		return pqe.E(pqe.NotFound, u.String())
	}
	return fmt.Errorf("%s: %s", u, resp.Status)
}

type httpObject struct {
	ctx    context.Context
	client *http.Client
	uri    string
	size   int64
	off    int64
}

var _ Sizer = (*httpObject)(nil)

func (o *httpObject) Read(b []byte) (int, error) {
	n, err := o.ReadAt(b, o.off)
	o.off += int64(n)
	return n, err
}

func (o *httpObject) ReadAt(b []byte, off int64) (int, error) {
	if off >= o.size {
		return 0, io.EOF
	}
	if len(b) == 0 {
		return 0, nil
	}
	end := off + int64(len(b))
	if end > o.size {
		end = o.size
	}
	req, err := http.NewRequestWithContext(o.ctx, http.MethodGet, o.uri, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end-1))
	resp, err := o.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		if resp.StatusCode == http.StatusOK {
			return 0, pqe.E(pqe.Capability, "%s: server does not support range requests", o.uri)
		}
		return 0, fmt.Errorf("%s: %s", o.uri, resp.Status)
	}
	n, err := io.ReadFull(resp.Body, b[:end-off])
	if err == nil && n < len(b) {
		err = io.EOF
	}
	return n, err
}

func (o *httpObject) Size() (int64, error) {
	return o.size, nil
}

func (*httpObject) Close() error {
	return nil
}
