package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/colin-oos/lumen-sub000/api"
	"github.com/colin-oos/lumen-sub000/api/client"
	"github.com/colin-oos/lumen-sub000/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fetchSource = `fn fetch(url) raises io, net = { io.print("fetching"); net.get(url) }
fetch("http://example.com")`

type testClient struct {
	*testing.T
	*client.Connection
	registry *prometheus.Registry
	url      string
}

func newTestClient(t *testing.T) *testClient {
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(service.New(service.Config{
		Logger:   zaptest.NewLogger(t),
		Registry: reg,
	}))
	t.Cleanup(srv.Close)
	return &testClient{
		T:          t,
		Connection: client.NewConnectionTo(srv.URL),
		registry:   reg,
		url:        srv.URL,
	}
}

func (c *testClient) TestRun(req api.RunRequest) *api.RunResponse {
	resp, err := c.Connection.Run(context.Background(), req)
	require.NoError(c, err)
	return resp
}

func (c *testClient) post(path, contentType, body string) *http.Response {
	resp, err := http.Post(c.url+path, contentType, strings.NewReader(body))
	require.NoError(c, err)
	c.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRun(t *testing.T) {
	c := newTestClient(t)
	resp := c.TestRun(api.RunRequest{Source: `fn twice(x) = x * 2
(twice(21), "ok", [1, 2])`})
	assert.JSONEq(t, `[42, "ok", [1, 2]]`, string(resp.Value))
	assert.Equal(t, `(42, "ok", [1, 2])`, resp.Display)
	assert.Len(t, resp.Hash, 16)
	assert.NotEmpty(t, resp.RunID)
	assert.Empty(t, resp.Signals)

	// Runs of the same program produce the same hash.
	again := c.TestRun(api.RunRequest{Source: `fn twice(x) = x * 2
(twice(21), "ok", [1, 2])`, Seed: "other"})
	assert.Equal(t, resp.Hash, again.Hash)
	assert.NotEqual(t, resp.RunID, again.RunID)
}

func TestRunDenied(t *testing.T) {
	c := newTestClient(t)
	resp := c.TestRun(api.RunRequest{Source: fetchSource, Deny: []string{"net"}})
	assert.JSONEq(t, `"(denied effect net)"`, string(resp.Value))
	assert.Equal(t, []string{"(denied effect net)"}, resp.Signals)
	assert.Empty(t, resp.Stdout)
	assert.Equal(t, 1, resp.Stats.Denied)

	err := testutil.GatherAndCompare(c.registry, strings.NewReader(`
# HELP lumen_denied_effects_total Number of effect calls refused by the capability gate.
# TYPE lumen_denied_effects_total counter
lumen_denied_effects_total 1
# HELP lumen_runs_total Number of programs run.
# TYPE lumen_runs_total counter
lumen_runs_total 1
# HELP lumen_signals_total Number of signals produced, by kind.
# TYPE lumen_signals_total counter
lumen_signals_total{kind="denied"} 1
`), "lumen_runs_total", "lumen_denied_effects_total", "lumen_signals_total")
	assert.NoError(t, err)
}

func TestRunMock(t *testing.T) {
	c := newTestClient(t)
	resp := c.TestRun(api.RunRequest{Source: fetchSource, Mock: true})
	assert.JSONEq(t, `"(mock net.get http://example.com)"`, string(resp.Value))
	assert.Equal(t, "fetching\n", resp.Stdout)
}

func TestRunSourceBody(t *testing.T) {
	c := newTestClient(t)
	resp := c.post("/run?deny=net,fs", api.MediaTypeLumen, fetchSource)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "(denied effect net)", out.Display)
}

func TestRunStepLimit(t *testing.T) {
	c := newTestClient(t)
	resp := c.TestRun(api.RunRequest{Source: `actor Loop(n) = send Loop, n
send Loop, 0
"done"`})
	assert.JSONEq(t, `"done"`, string(resp.Value))
	assert.Contains(t, resp.Signals, "(step limit 100000)")
}

func TestFmt(t *testing.T) {
	c := newTestClient(t)
	out, err := c.Fmt(context.Background(), "let x=1+2\nx")
	require.NoError(t, err)
	assert.Contains(t, out, "let x = 1 + 2")
	again, err := c.Fmt(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestSid(t *testing.T) {
	c := newTestClient(t)
	a, err := c.Sid(context.Background(), "let x=1+2\nx")
	require.NoError(t, err)
	b, err := c.Sid(context.Background(), "let x = 1 + 2\n\nx")
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.Equal(t, a, b)
	d, err := c.Sid(context.Background(), "let x = 1 + 3\nx")
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestCheck(t *testing.T) {
	c := newTestClient(t)
	resp, err := c.Check(context.Background(), `actor Logger(msg) = io.print(msg)`)
	require.NoError(t, err)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "io.print requires effect io, which actor Logger does not declare", resp.Diagnostics[0].Msg)

	resp, err = c.Check(context.Background(), `fn ok(name) raises io = io.print(name)`)
	require.NoError(t, err)
	assert.NotNil(t, resp.Diagnostics)
	assert.Empty(t, resp.Diagnostics)
}

func TestBadRequest(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Connection.Run(context.Background(), api.RunRequest{Source: "let = 1"})
	var resp *client.ErrorResponse
	require.ErrorAs(t, err, &resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ParseError", resp.Err.Type)
	require.Len(t, resp.Err.Diagnostics, 1)
	d := resp.Err.Diagnostics[0]
	assert.Equal(t, "request", d.File)
	assert.Equal(t, 1, d.Line)
	assert.Equal(t, 5, d.Column)
	assert.Contains(t, d.Msg, "expected identifier")

	_, err = c.Fmt(context.Background(), "let x = (")
	require.ErrorAs(t, err, &resp)
	require.Len(t, resp.Err.Diagnostics, 1)
	assert.Equal(t, 1, resp.Err.Diagnostics[0].Line)

	r := c.post("/run", "image/png", "x")
	assert.Equal(t, http.StatusUnsupportedMediaType, r.StatusCode)

	r = c.post("/run", api.MediaTypeJSON, "{")
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestStatusAndRequestID(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Ping(context.Background()))
	assert.NotEmpty(t, c.LastID)

	c.Defaults.Set(api.RequestIDHeader, "req-1")
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "req-1", c.LastID)

	err := testutil.GatherAndCompare(c.registry, strings.NewReader(`
# HELP lumen_requests_total Number of HTTP requests, by route and status code.
# TYPE lumen_requests_total counter
lumen_requests_total{code="200",route="/status"} 2
`), "lumen_requests_total")
	assert.NoError(t, err)
}
