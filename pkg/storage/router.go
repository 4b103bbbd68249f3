package storage

import (
	"context"
	"fmt"
	"io"
)

// Router dispatches each request to the Engine registered for the URI's
// scheme.
type Router struct {
	engines map[Scheme]Engine
}

var _ Engine = (*Router)(nil)

func NewRouter() *Router {
	return &Router{engines: make(map[Scheme]Engine)}
}

func (r *Router) Enable(scheme Scheme, engine Engine) *Router {
	r.engines[scheme] = engine
	return r
}

// NewLocalEngine returns an Engine for local files, stdio, HTTP, and S3.
func NewLocalEngine() *Router {
	http := NewHTTPEngine()
	return NewRouter().
		Enable(FileScheme, NewFileSystem()).
		Enable(StdioScheme, NewStdioEngine()).
		Enable(HTTPScheme, http).
		Enable(HTTPSScheme, http).
		Enable(S3Scheme, NewS3Engine())
}

// NewRemoteEngine is like NewLocalEngine but refuses local files and
// stdio.  The HTTP service uses it so that requests cannot read the
// server's file system.
func NewRemoteEngine() *Router {
	http := NewHTTPEngine()
	return NewRouter().
		Enable(HTTPScheme, http).
		Enable(HTTPSScheme, http).
		Enable(S3Scheme, NewS3Engine())
}

func (r *Router) lookup(u *URI) (Engine, error) {
	if e, ok := r.engines[u.SchemeOf()]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%s: %w for scheme %q", u, ErrNotSupported, u.SchemeOf())
}

func (r *Router) Get(ctx context.Context, u *URI) (Reader, error) {
	e, err := r.lookup(u)
	if err != nil {
		return nil, err
	}
	return e.Get(ctx, u)
}

func (r *Router) Put(ctx context.Context, u *URI) (io.WriteCloser, error) {
	e, err := r.lookup(u)
	if err != nil {
		return nil, err
	}
	return e.Put(ctx, u)
}

func (r *Router) Exists(ctx context.Context, u *URI) (bool, error) {
	e, err := r.lookup(u)
	if err != nil {
		return false, err
	}
	return e.Exists(ctx, u)
}
