package storage

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

type URI url.URL

// ParseURI parses path as a URI.  Text without a recognized scheme names
// a local file and is made absolute.
func ParseURI(path string) (*URI, error) {
	if path == "" {
		return &URI{}, nil
	}
	if path == "-" {
		path = "stdio:stdin"
	}
	if u, err := url.Parse(path); err == nil {
		switch Scheme(u.Scheme) {
		case StdioScheme, HTTPScheme, HTTPSScheme, S3Scheme:
			return (*URI)(u), nil
		case FileScheme:
			if u.Path != "" {
				return (*URI)(u), nil
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &URI{Scheme: string(FileScheme), Path: filepath.ToSlash(abs)}, nil
}

func MustParseURI(path string) *URI {
	u, err := ParseURI(path)
	if err != nil {
		panic(err)
	}
	return u
}

func (u URI) String() string {
	return (*url.URL)(&u).String()
}

func (u *URI) SchemeOf() Scheme {
	return Scheme(u.URL().Scheme)
}

func (u *URI) URL() *url.URL {
	return (*url.URL)(u)
}

func (u URI) Filepath() string {
	return filepath.FromSlash(u.Path)
}

// Base returns the last element of the URI's path, which for stdio URIs
// is "stdin", "stdout", or "stderr".
func (u URI) Base() string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return path.Base(u.Path)
}

func (u URI) JoinPath(elem ...string) *URI {
	u.Path = path.Join(append([]string{u.Path}, elem...)...)
	return &u
}

// IsLocal reports whether u refers to a local file or stdio.
func (u *URI) IsLocal() bool {
	s := u.SchemeOf()
	return s == FileScheme || s == StdioScheme
}

// Key returns the S3 object key of u.
func (u URI) Key() string {
	return strings.TrimPrefix(u.Path, "/")
}
