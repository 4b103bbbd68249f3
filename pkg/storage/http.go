package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
)

// HTTPEngine reads objects with GET.  Writes are not supported.
type HTTPEngine struct {
	Client *http.Client
}

var _ Engine = (*HTTPEngine)(nil)

func NewHTTPEngine() *HTTPEngine {
	return &HTTPEngine{Client: http.DefaultClient}
}

type httpReader struct {
	io.ReadCloser
	size int64
}

func (h *httpReader) Size() (int64, error) {
	if h.size < 0 {
		return 0, ErrNotSupported
	}
	return h.size, nil
}

func (h *HTTPEngine) do(ctx context.Context, method string, u *URI) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", u, fs.ErrNotExist)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %s", method, u, resp.Status)
	}
	return resp, nil
}

func (h *HTTPEngine) Get(ctx context.Context, u *URI) (Reader, error) {
	resp, err := h.do(ctx, http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	return &httpReader{resp.Body, resp.ContentLength}, nil
}

func (*HTTPEngine) Put(context.Context, *URI) (io.WriteCloser, error) {
	return nil, ErrNotSupported
}

func (h *HTTPEngine) Exists(ctx context.Context, u *URI) (bool, error) {
	resp, err := h.do(ctx, http.MethodHead, u)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return true, nil
}
