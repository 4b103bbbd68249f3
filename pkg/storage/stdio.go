package storage

import (
	"context"
	"io"
	"os"
)

// StdioEngine serves stdio:stdin for reading and stdio:stdout and
// stdio:stderr for writing.  Closing a reader or writer returned by the
// engine leaves the underlying file open so it can be used again.
type StdioEngine struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var _ Engine = (*StdioEngine)(nil)

func NewStdioEngine() *StdioEngine {
	return &StdioEngine{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// NewStdioEngineWith is like NewStdioEngine but uses the given streams.
func NewStdioEngineWith(stdin io.Reader, stdout, stderr io.Writer) *StdioEngine {
	return &StdioEngine{stdin: stdin, stdout: stdout, stderr: stderr}
}

func (s *StdioEngine) Get(_ context.Context, u *URI) (Reader, error) {
	if u.Base() != "stdin" {
		return nil, ErrNotSupported
	}
	return io.NopCloser(s.stdin), nil
}

func (s *StdioEngine) Put(_ context.Context, u *URI) (io.WriteCloser, error) {
	switch u.Base() {
	case "stdout":
		return &nopCloser{s.stdout}, nil
	case "stderr":
		return &nopCloser{s.stderr}, nil
	}
	return nil, ErrNotSupported
}

func (*StdioEngine) Exists(_ context.Context, u *URI) (bool, error) {
	switch u.Base() {
	case "stdin", "stdout", "stderr":
		return true, nil
	}
	return false, nil
}

type nopCloser struct {
	io.Writer
}

func (*nopCloser) Close() error { return nil }
