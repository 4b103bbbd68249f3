package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/api"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/check"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/compiler/sfmt"
	"github.com/colin-oos/lumen-sub000/compiler/srcfiles"
	"github.com/colin-oos/lumen-sub000/runtime"
	"go.uber.org/zap"
)

// handlerFunc is an HTTP handler that reports failure by returning an
// error, which is written as an api.Error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type statusError struct {
	code int
	typ  string
	err  error
}

func (s *statusError) Error() string { return s.err.Error() }
func (s *statusError) Unwrap() error { return s.err }

func badRequest(typ string, err error) error {
	return &statusError{http.StatusBadRequest, typ, err}
}

func (f handlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}
	code, typ := http.StatusInternalServerError, "Error"
	var serr *statusError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		code, typ = http.StatusRequestEntityTooLarge, "TooLarge"
	case errors.As(err, &serr):
		code, typ = serr.code, serr.typ
	}
	apiErr := api.Error{Type: typ, Message: err.Error()}
	var list srcfiles.ErrorList
	if errors.As(err, &list) {
		apiErr.Diagnostics = list.Diagnostics()
	}
	writeJSON(w, code, apiErr)
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", api.MediaTypeJSON)
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func handleStatus(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", api.MediaTypeText)
	_, err := io.WriteString(w, "ok")
	return err
}

// decodeRequest reads a request body into req.  A JSON body is decoded
// as is.  A program text body becomes req's source, with deny (comma
// separated), mock, and seed read from the query string.
func (s *Service) decodeRequest(w http.ResponseWriter, r *http.Request, req *api.RunRequest) error {
	body, err := api.MediaTypeToBody(r.Header.Get("Content-Type"))
	if err != nil {
		return &statusError{http.StatusUnsupportedMediaType, "UnsupportedMediaType", err}
	}
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.conf.MaxSource))
	if err != nil {
		return err
	}
	if body == api.BodySource {
		q := r.URL.Query()
		req.Source = string(b)
		if deny := q.Get("deny"); deny != "" {
			req.Deny = strings.Split(deny, ",")
		}
		req.Mock = q.Get("mock") == "true"
		req.Seed = q.Get("seed")
		return nil
	}
	if err := json.Unmarshal(b, req); err != nil {
		return badRequest("InvalidRequest", err)
	}
	return nil
}

func (s *Service) load(r *http.Request, src string) (*ast.Program, error) {
	p, err := s.loader.LoadSource(r.Context(), "request", []byte(src))
	if err != nil {
		var list srcfiles.ErrorList
		if errors.As(err, &list) {
			return nil, badRequest("ParseError", err)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) handleRun(w http.ResponseWriter, r *http.Request) error {
	var req api.RunRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		return err
	}
	prog, err := s.load(r, req.Source)
	if err != nil {
		return err
	}
	logger := s.logger.With(zap.String("request_id", api.RequestIDFromContext(r.Context())))
	var stdout bytes.Buffer
	start := time.Now()
	res, err := runtime.Run(r.Context(), prog, runtime.Options{
		DeniedEffects: req.Deny,
		MockEffects:   req.Mock,
		SchedulerSeed: req.Seed,
		MaxSteps:      s.conf.MaxSteps,
		MaxRead:       s.conf.MaxRead,
		Logger:        logger,
		Engine:        s.engine,
		Stdout:        &stdout,
	})
	if err != nil {
		return err
	}
	s.metrics.observeRun(res, time.Since(start))
	value, err := json.Marshal(lumen.ToJSON(res.Value))
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	signals := make([]string, 0, len(res.Signals))
	for _, sig := range res.Signals {
		signals = append(signals, sig.Sentinel())
	}
	return writeJSON(w, http.StatusOK, api.RunResponse{
		Value:   value,
		Display: lumen.Display(res.Value),
		Stdout:  stdout.String(),
		Hash:    res.Hash,
		Signals: signals,
		Stats:   res.Stats,
		RunID:   res.RunID,
	})
}

func (s *Service) decodeSource(w http.ResponseWriter, r *http.Request) (string, error) {
	var req api.RunRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		return "", err
	}
	return req.Source, nil
}

func (s *Service) handleFmt(w http.ResponseWriter, r *http.Request) error {
	src, err := s.decodeSource(w, r)
	if err != nil {
		return err
	}
	// Formatting needs no Sids, so the loader and its cache are skipped.
	p, err := parser.Parse("request", []byte(src))
	if err != nil {
		return badRequest("ParseError", err)
	}
	return writeJSON(w, http.StatusOK, api.FmtResponse{Source: sfmt.Program(p)})
}

func (s *Service) handleSid(w http.ResponseWriter, r *http.Request) error {
	src, err := s.decodeSource(w, r)
	if err != nil {
		return err
	}
	p, err := s.load(r, src)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, api.SidResponse{Sid: p.SID()})
}

func (s *Service) handleCheck(w http.ResponseWriter, r *http.Request) error {
	src, err := s.decodeSource(w, r)
	if err != nil {
		return err
	}
	p, err := s.load(r, src)
	if err != nil {
		return err
	}
	diags := check.Check(p)
	if diags == nil {
		diags = []check.Diagnostic{}
	}
	return writeJSON(w, http.StatusOK, api.CheckResponse{Diagnostics: diags})
}
