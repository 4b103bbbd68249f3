package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSystem is the Engine for file URIs.
type FileSystem struct {
	perm os.FileMode
}

var _ Engine = (*FileSystem)(nil)

func NewFileSystem() *FileSystem {
	return &FileSystem{perm: 0644}
}

type fileReader struct {
	*os.File
	size int64
}

var _ Sizer = (*fileReader)(nil)

func (f *fileReader) Size() (int64, error) {
	return f.size, nil
}

func (*FileSystem) Get(_ context.Context, u *URI) (Reader, error) {
	f, err := os.Open(u.Filepath())
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		err = fmt.Errorf("%s: is a directory", u)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileReader{f, info.Size()}, nil
}

// Put creates any missing parent directories and writes to a temporary
// file in the same directory, which replaces the file at u on Close.  A
// program reading the file concurrently sees the old or the new content,
// never a mix.
func (f *FileSystem) Put(_ context.Context, u *URI) (io.WriteCloser, error) {
	path := u.Filepath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	return &fileWriter{File: tmp, path: path, perm: f.perm}, nil
}

func (*FileSystem) Exists(_ context.Context, u *URI) (bool, error) {
	_, err := os.Stat(u.Filepath())
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

type fileWriter struct {
	*os.File
	path string
	perm os.FileMode
}

func (w *fileWriter) Abort() {
	w.File.Close()
	os.Remove(w.Name())
}

func (w *fileWriter) Close() error {
	err := w.File.Close()
	if err == nil {
		err = os.Chmod(w.Name(), w.perm)
	}
	if err == nil {
		err = os.Rename(w.Name(), w.path)
	}
	if err != nil {
		os.Remove(w.Name())
	}
	return err
}
