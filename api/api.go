// Package api defines the requests and responses of the Lumen HTTP
// service.
package api

import (
	"context"
	"encoding/json"

	"github.com/colin-oos/lumen-sub000/compiler/check"
	"github.com/colin-oos/lumen-sub000/compiler/srcfiles"
	"github.com/colin-oos/lumen-sub000/runtime/interp"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// Error is the body of every error response.  Diagnostics is set for
// requests whose source does not parse.
type Error struct {
	Type        string                `json:"type"`
	Message     string                `json:"error"`
	Diagnostics []srcfiles.Diagnostic `json:"diagnostics,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

type SourceRequest struct {
	Source string `json:"source"`
}

type RunRequest struct {
	Source string   `json:"source"`
	Deny   []string `json:"deny,omitempty"`
	Mock   bool     `json:"mock,omitempty"`
	Seed   string   `json:"seed,omitempty"`
}

type RunResponse struct {
	// Value is the program value as JSON.  Constructors are objects
	// with "tag" and "values" and signals are their sentinel text.
	Value   json.RawMessage `json:"value"`
	Display string          `json:"display"`
	Stdout  string          `json:"stdout"`
	Hash    string          `json:"hash"`
	Signals []string        `json:"signals"`
	Stats   interp.Stats    `json:"stats"`
	RunID   string          `json:"run_id"`
}

type FmtResponse struct {
	Source string `json:"source"`
}

type SidResponse struct {
	Sid string `json:"sid"`
}

type CheckResponse struct {
	Diagnostics []check.Diagnostic `json:"diagnostics"`
}
