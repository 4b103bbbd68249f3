// Package client talks to a Lumen HTTP service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/colin-oos/lumen-sub000/api"
)

const DefaultURL = "http://localhost:9867"

type Connection struct {
	client   *http.Client
	url      string
	LastID   string
	Defaults http.Header
}

func NewConnection() *Connection {
	return NewConnectionTo(DefaultURL)
}

func NewConnectionTo(url string) *Connection {
	return &Connection{
		client:   &http.Client{},
		url:      strings.TrimSuffix(url, "/"),
		Defaults: make(http.Header),
	}
}

func (c *Connection) URL() string {
	return c.url
}

// ErrorResponse is returned for a response with an error status.
type ErrorResponse struct {
	StatusCode int
	Err        api.Error
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("status code %d: %s", e.StatusCode, e.Err.Message)
}

func (c *Connection) Run(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
	var resp api.RunResponse
	err := c.do(ctx, http.MethodPost, "/run", req, &resp)
	return &resp, err
}

func (c *Connection) Fmt(ctx context.Context, source string) (string, error) {
	var resp api.FmtResponse
	err := c.do(ctx, http.MethodPost, "/fmt", api.SourceRequest{Source: source}, &resp)
	return resp.Source, err
}

func (c *Connection) Sid(ctx context.Context, source string) (string, error) {
	var resp api.SidResponse
	err := c.do(ctx, http.MethodPost, "/sid", api.SourceRequest{Source: source}, &resp)
	return resp.Sid, err
}

func (c *Connection) Check(ctx context.Context, source string) (*api.CheckResponse, error) {
	var resp api.CheckResponse
	err := c.do(ctx, http.MethodPost, "/check", api.SourceRequest{Source: source}, &resp)
	return &resp, err
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/status", nil, nil)
}

func (c *Connection) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, r)
	if err != nil {
		return err
	}
	for k, v := range c.Defaults {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", api.MediaTypeJSON)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	c.LastID = res.Header.Get(api.RequestIDHeader)
	if res.StatusCode >= 400 {
		e := &ErrorResponse{StatusCode: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(&e.Err); err != nil {
			e.Err.Message = http.StatusText(res.StatusCode)
		}
		return e
	}
	if out == nil {
		_, err := io.Copy(io.Discard, res.Body)
		return err
	}
	return json.NewDecoder(res.Body).Decode(out)
}
