// Package storage provides uniform access to the places Lumen programs
// read sources and data from: local files, stdio, HTTP URLs, and S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

type Scheme string

const (
	FileScheme  Scheme = "file"
	StdioScheme Scheme = "stdio"
	HTTPScheme  Scheme = "http"
	HTTPSScheme Scheme = "https"
	S3Scheme    Scheme = "s3"
)

var (
	ErrNotSupported = errors.New("storage operation not supported")
	errAborted      = errors.New("write aborted")
)

type Reader interface {
	io.Reader
	io.Closer
}

// Sizer is implemented by Readers that know the size of their source.
type Sizer interface {
	Size() (int64, error)
}

//go:generate go run go.uber.org/mock/mockgen -destination=./mock/mock.go -package=mock . Engine

// Engine reads and writes whole objects named by URIs.  Engines return
// errors matching fs.ErrNotExist for missing objects and ErrNotSupported
// for operations they do not offer.
type Engine interface {
	Get(context.Context, *URI) (Reader, error)
	// Put returns a writer for the object at u.  The object is replaced
	// when the writer is closed.
	Put(context.Context, *URI) (io.WriteCloser, error)
	Exists(context.Context, *URI) (bool, error)
}

// ErrTooLarge is returned by Get when a source exceeds the read limit.
type ErrTooLarge struct {
	URI   string
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("%s: exceeds read limit of %d bytes", e.URI, e.Limit)
}

// Get reads the entire object at u.  A limit greater than zero caps the
// number of bytes read.  Objects whose size is known up front are refused
// without being read.
func Get(ctx context.Context, engine Engine, u *URI, limit int64) ([]byte, error) {
	r, err := engine.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if limit <= 0 {
		return io.ReadAll(r)
	}
	if s, ok := r.(Sizer); ok {
		if n, err := s.Size(); err == nil && n > limit {
			return nil, &ErrTooLarge{URI: u.String(), Limit: limit}
		}
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, &ErrTooLarge{URI: u.String(), Limit: limit}
	}
	return b, nil
}

// Put writes b to the object at u, replacing any previous content.
func Put(ctx context.Context, engine Engine, u *URI, b []byte) error {
	w, err := engine.Put(ctx, u)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		abort(w)
		return err
	}
	return w.Close()
}

// abort closes w, discarding what was written if w supports that.
func abort(w io.WriteCloser) {
	if a, ok := w.(interface{ Abort() }); ok {
		a.Abort()
		return
	}
	w.Close()
}
