// Package service serves Lumen over HTTP: running programs, formatting
// them, computing their Sids, and checking them.  Every request gets its
// own interpreter, so requests share nothing but the parse cache.
package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/colin-oos/lumen-sub000/api"
	"github.com/colin-oos/lumen-sub000/compiler"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxSource = 1 << 20
	// DefaultMaxSteps is lower than the interpreter default so that one
	// request cannot occupy the service for long.
	DefaultMaxSteps = 100_000
)

type Config struct {
	Logger *zap.Logger
	// Engine serves the fs and db effects and stores.  The default
	// engine reaches only HTTP(S) and S3, never local files.
	Engine storage.Engine
	// Registry receives the service metrics and is served at /metrics.
	Registry    *prometheus.Registry
	CORSOrigins []string
	MaxSource   int64
	MaxSteps    int
	MaxRead     int64
}

type Service struct {
	conf    Config
	logger  *zap.Logger
	engine  storage.Engine
	loader  *compiler.Loader
	metrics *metrics
	router  *mux.Router
	handler http.Handler
}

func New(conf Config) *Service {
	if conf.Logger == nil {
		conf.Logger = zap.NewNop()
	}
	if conf.Engine == nil {
		conf.Engine = storage.NewRemoteEngine()
	}
	if conf.Registry == nil {
		conf.Registry = prometheus.NewRegistry()
	}
	if conf.MaxSource <= 0 {
		conf.MaxSource = DefaultMaxSource
	}
	if conf.MaxSteps <= 0 {
		conf.MaxSteps = DefaultMaxSteps
	}
	if len(conf.CORSOrigins) == 0 {
		conf.CORSOrigins = []string{"*"}
	}
	loader := compiler.NewLoader(conf.Engine)
	loader.Logger = conf.Logger
	s := &Service{
		conf:    conf,
		logger:  conf.Logger,
		engine:  conf.Engine,
		loader:  loader,
		metrics: newMetrics(conf.Registry),
		router:  mux.NewRouter(),
	}
	s.router.Use(s.middleware)
	s.router.Handle("/run", handlerFunc(s.handleRun)).Methods(http.MethodPost)
	s.router.Handle("/fmt", handlerFunc(s.handleFmt)).Methods(http.MethodPost)
	s.router.Handle("/sid", handlerFunc(s.handleSid)).Methods(http.MethodPost)
	s.router.Handle("/check", handlerFunc(s.handleCheck)).Methods(http.MethodPost)
	s.router.Handle("/status", handlerFunc(handleStatus)).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(conf.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.handler = cors.New(cors.Options{
		AllowedOrigins: conf.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", api.RequestIDHeader},
		ExposedHeaders: []string{api.RequestIDHeader},
	}).Handler(s.router)
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// middleware tags each request with an id, logs it, and counts it by
// route.
func (s *Service) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(api.RequestIDHeader)
		if id == "" {
			id = ksuid.New().String()
		}
		w.Header().Set(api.RequestIDHeader, id)
		r = r.WithContext(api.ContextWithRequestID(r.Context(), id))
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(sw.code)).Inc()
		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", sw.code),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (s *statusWriter) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
