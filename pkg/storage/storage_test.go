package storage

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	cases := []struct {
		in     string
		scheme Scheme
		str    string
	}{
		{"-", StdioScheme, "stdio:stdin"},
		{"stdio:stdout", StdioScheme, "stdio:stdout"},
		{"s3://bucket/a/b.json", S3Scheme, "s3://bucket/a/b.json"},
		{"https://example.com/rows.json", HTTPSScheme, "https://example.com/rows.json"},
		{"file:///tmp/x.lm", FileScheme, "file:///tmp/x.lm"},
	}
	for _, c := range cases {
		u, err := ParseURI(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.scheme, u.SchemeOf(), c.in)
		assert.Equal(t, c.str, u.String(), c.in)
	}
}

func TestParseURIRelativePath(t *testing.T) {
	u, err := ParseURI("some/dir/prog.lm")
	require.NoError(t, err)
	assert.Equal(t, FileScheme, u.SchemeOf())
	assert.True(t, filepath.IsAbs(u.Filepath()))
	assert.Equal(t, "prog.lm", u.Base())
	assert.True(t, u.IsLocal())
}

func TestURIKeyAndJoin(t *testing.T) {
	u := MustParseURI("s3://bucket/dir")
	assert.Equal(t, "dir", u.Key())
	assert.Equal(t, "dir/rows.json", u.JoinPath("rows.json").Key())
	assert.Equal(t, "dir", u.Key(), "JoinPath must not modify its receiver")
	assert.False(t, u.IsLocal())
	assert.Equal(t, "stdin", MustParseURI("-").Base())
}

func TestFileSystemRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	engine := NewFileSystem()
	u := MustParseURI(filepath.Join(dir, "nested", "rows.json"))

	ok, err := engine.Exists(ctx, u)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = engine.Get(ctx, u)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, Put(ctx, engine, u, []byte(`[{"id":1}]`)))
	b, err := Get(ctx, engine, u, 0)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(b))

	ok, err = engine.Exists(ctx, u)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = engine.Get(ctx, MustParseURI(filepath.Join(dir, "nested")))
	assert.ErrorContains(t, err, "is a directory")
}

func TestFileSystemAbortedWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	engine := NewFileSystem()
	u := MustParseURI(filepath.Join(dir, "out.txt"))
	require.NoError(t, Put(ctx, engine, u, []byte("old")))

	w, err := engine.Put(ctx, u)
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	// Until the writer is closed, readers see the old content.
	b, err := Get(ctx, engine, u, 0)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))

	abort(w)
	b, err = Get(ctx, engine, u, 0)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")
}

func TestGetLimit(t *testing.T) {
	ctx := context.Background()
	engine := NewFileSystem()
	u := MustParseURI(filepath.Join(t.TempDir(), "big"))
	require.NoError(t, Put(ctx, engine, u, []byte("0123456789")))

	b, err := Get(ctx, engine, u, 10)
	require.NoError(t, err)
	assert.Len(t, b, 10)

	_, err = Get(ctx, engine, u, 9)
	var tooLarge *ErrTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.EqualValues(t, 9, tooLarge.Limit)
}

func TestHTTPEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rows.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()
	ctx := context.Background()
	engine := NewHTTPEngine()

	b, err := Get(ctx, engine, MustParseURI(srv.URL+"/rows.json"), 0)
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", string(b))

	ok, err := engine.Exists(ctx, MustParseURI(srv.URL+"/missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = engine.Get(ctx, MustParseURI(srv.URL+"/missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = engine.Put(ctx, MustParseURI(srv.URL+"/rows.json"))
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestRemoteEngineRefusesFiles(t *testing.T) {
	_, err := NewRemoteEngine().Get(context.Background(), MustParseURI("/etc/passwd"))
	assert.ErrorIs(t, err, ErrNotSupported)
}
