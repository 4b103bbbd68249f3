package adapter

import (
	"bytes"
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	r := NewRegistry(Options{Stdout: &out})
	v := r.Invoke(context.Background(), "io", "print", []lumen.Value{lumen.Text("n ="), lumen.Int(3), lumen.List{lumen.Text("a")}})
	assert.Equal(t, lumen.Null{}, v)
	assert.Equal(t, "n = 3 [\"a\"]\n", out.String())
}

func TestMock(t *testing.T) {
	r := NewRegistry(Options{Mock: true})
	ctx := context.Background()
	url := []lumen.Value{lumen.Text("http://example.com")}
	assert.Equal(t, lumen.Text("(mock net.get http://example.com)"), r.Invoke(ctx, "net", "get", url))
	assert.Equal(t, lumen.Text("(mock http.get http://example.com)"), r.Invoke(ctx, "http", "get", url))
	assert.Equal(t, lumen.Text("(mock http.post http://example.com)"), r.Invoke(ctx, "http", "post", url))
	assert.Equal(t, lumen.Int(0), r.Invoke(ctx, "time", "now", nil))
	assert.Equal(t, lumen.Null{}, r.Invoke(ctx, "time", "sleep", []lumen.Value{lumen.Int(60_000)}))
}

func TestUnknownOperation(t *testing.T) {
	r := NewRegistry(Options{})
	v := r.Invoke(context.Background(), "audit", "log", nil)
	require.IsType(t, &lumen.AdapterError{}, v)
	assert.Equal(t, "(audit.log error)", v.(lumen.Signal).Sentinel())
}

func TestTime(t *testing.T) {
	r := NewRegistry(Options{})
	ctx := context.Background()
	ms := r.Invoke(ctx, "time", "parse", []lumen.Value{lumen.Text("2021-03-04 05:06:07")})
	assert.Equal(t, lumen.Int(1614834367000), ms)
	s := r.Invoke(ctx, "time", "format", []lumen.Value{ms, lumen.Text("%Y/%m/%d %H:%M")})
	assert.Equal(t, lumen.Text("2021/03/04 05:06"), s)

	bad := r.Invoke(ctx, "time", "parse", []lumen.Value{lumen.Text("not a date")})
	assert.Equal(t, "(time.parse error)", bad.(lumen.Signal).Sentinel())
}

func TestFS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	r := NewRegistry(Options{MaxRead: 5})
	ctx := context.Background()
	assert.Equal(t, lumen.Null{}, r.Invoke(ctx, "fs", "write", []lumen.Value{lumen.Text(path), lumen.Text("hello")}))
	assert.Equal(t, lumen.Text("hello"), r.Invoke(ctx, "fs", "read", []lumen.Value{lumen.Text(path)}))

	r.Invoke(ctx, "fs", "write", []lumen.Value{lumen.Text(path), lumen.Text("hello, world")})
	v := r.Invoke(ctx, "fs", "read", []lumen.Value{lumen.Text(path)})
	assert.Equal(t, "(fs.read error)", v.(lumen.Signal).Sentinel(), "read limit exceeded")

	v = r.Invoke(ctx, "fs", "read", []lumen.Value{lumen.Text(filepath.Join(t.TempDir(), "missing"))})
	assert.IsType(t, &lumen.AdapterError{}, v)
}

func TestFSStdio(t *testing.T) {
	var stdout bytes.Buffer
	stdio := storage.NewStdioEngineWith(strings.NewReader("from stdin"), &stdout, &stdout)
	r := NewRegistry(Options{Engine: storage.NewRouter().Enable(storage.StdioScheme, stdio)})
	ctx := context.Background()
	assert.Equal(t, lumen.Text("from stdin"), r.Invoke(ctx, "fs", "read", []lumen.Value{lumen.Text("stdio:stdin")}))
	assert.Equal(t, lumen.Null{}, r.Invoke(ctx, "fs", "write", []lumen.Value{lumen.Text("stdio:stdout"), lumen.Text("to stdout")}))
	assert.Equal(t, "to stdout", stdout.String())

	v := r.Invoke(ctx, "fs", "read", []lumen.Value{lumen.Text(filepath.Join(t.TempDir(), "x"))})
	assert.IsType(t, &lumen.AdapterError{}, v, "file scheme is not enabled")
}

func TestHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			b := new(bytes.Buffer)
			b.ReadFrom(r.Body)
			w.Write([]byte("got " + b.String()))
			return
		}
		w.Write([]byte("pong"))
	}))
	defer srv.Close()
	r := NewRegistry(Options{})
	ctx := context.Background()
	assert.Equal(t, lumen.Text("pong"), r.Invoke(ctx, "http", "get", []lumen.Value{lumen.Text(srv.URL)}))
	assert.Equal(t, lumen.Text("pong"), r.Invoke(ctx, "net", "get", []lumen.Value{lumen.Text(srv.URL)}))
	assert.Equal(t, lumen.Text("got ping"), r.Invoke(ctx, "http", "post", []lumen.Value{lumen.Text(srv.URL), lumen.Text("ping")}))

	v := r.Invoke(ctx, "net", "get", []lumen.Value{lumen.Text("/etc/hostname")})
	assert.Equal(t, "(net.get error)", v.(lumen.Signal).Sentinel(), "network effects do not read files")
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"bo","id":2},{"name":"al","id":1}]`), 0644))
	r := NewRegistry(Options{})
	ctx := context.Background()

	rows, err := r.LoadStore(ctx, "users", path)
	require.NoError(t, err)
	assert.Equal(t, `[{id: 2, name: "bo"}, {id: 1, name: "al"}]`, lumen.Format(rows), "file order is kept")

	rows, err = r.LoadStore(ctx, "users", path+"#orderBy=id")
	require.NoError(t, err)
	assert.Equal(t, `[{id: 1, name: "al"}, {id: 2, name: "bo"}]`, lumen.Format(rows))

	_, err = r.LoadStore(ctx, "users", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "store users")
}

func TestDBLoadNotArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obj.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0644))
	v := NewRegistry(Options{}).Invoke(context.Background(), "db", "load", []lumen.Value{lumen.Text(path)})
	assert.Equal(t, "(db.load error)", v.(lumen.Signal).Sentinel())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER, name TEXT, score REAL);
INSERT INTO users VALUES (3, 'cy', 1.5), (1, 'al', NULL), (2, 'bo', 0.25);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	r := NewRegistry(Options{})
	ctx := context.Background()
	rows, err := r.LoadStore(ctx, "users", "sqlite:"+path+":users")
	require.NoError(t, err)
	assert.Equal(t, `[{id: 1, name: "al", score: null}, {id: 2, name: "bo", score: 0.25}, {id: 3, name: "cy", score: 1.5}]`, lumen.Format(rows))

	rows, err = r.LoadStore(ctx, "users", "sqlite:"+path+":users#orderBy=score")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	first, _ := rows[0].(lumen.Record).Get("name")
	assert.Equal(t, lumen.Text("bo"), first, "null sorts by serialization after numbers")

	_, err = r.LoadStore(ctx, "users", "sqlite:"+path+":users; DROP TABLE users")
	assert.Error(t, err)
	_, err = r.LoadStore(ctx, "users", "sqlite:"+filepath.Join(t.TempDir(), "missing.db")+":users")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	remote := NewRegistry(Options{Engine: storage.NewRemoteEngine()})
	_, err = remote.LoadStore(ctx, "users", "sqlite:"+path+":users")
	assert.ErrorIs(t, err, storage.ErrNotSupported)
}

func TestSortRowsDefaults(t *testing.T) {
	rows := lumen.List{
		lumen.Record{{Name: "name", Value: lumen.Text("b")}},
		lumen.Record{{Name: "name", Value: lumen.Text("a")}},
	}
	assert.Equal(t, `[{name: "a"}, {name: "b"}]`, lumen.Format(sortRows(rows, "")))
	assert.Equal(t, `[1, 2, 3]`, lumen.Format(sortRows(lumen.List{lumen.Int(3), lumen.Int(1), lumen.Int(2)}, "")))
}

func TestParseRedisSpec(t *testing.T) {
	opts, key, err := parseRedisSpec("redis://:secret@localhost:6379/users")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, "users", key)

	_, _, err = parseRedisSpec("redis://localhost:6379")
	assert.Error(t, err)
}
