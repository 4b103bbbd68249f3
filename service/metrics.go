package service

import (
	"time"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/runtime"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	runs     prometheus.Counter
	denied   prometheus.Counter
	messages prometheus.Counter
	signals  *prometheus.CounterVec
	duration prometheus.Histogram
	requests *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumen_runs_total",
			Help: "Number of programs run.",
		}),
		denied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumen_denied_effects_total",
			Help: "Number of effect calls refused by the capability gate.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumen_messages_total",
			Help: "Number of actor messages processed.",
		}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumen_signals_total",
			Help: "Number of signals produced, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lumen_run_duration_seconds",
			Help:    "Time taken to run a program.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumen_requests_total",
			Help: "Number of HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.runs, m.denied, m.messages, m.signals, m.duration, m.requests)
	return m
}

func (m *metrics) observeRun(res *runtime.Result, elapsed time.Duration) {
	m.runs.Inc()
	m.duration.Observe(elapsed.Seconds())
	m.messages.Add(float64(res.Stats.Messages))
	m.denied.Add(float64(res.Stats.Denied))
	for _, s := range res.Signals {
		m.signals.WithLabelValues(signalKind(s)).Inc()
	}
}

func signalKind(s lumen.Signal) string {
	switch s.(type) {
	case *lumen.DeniedEffect:
		return "denied"
	case *lumen.Unbound:
		return "unbound"
	case *lumen.Timeout:
		return "timeout"
	case *lumen.AdapterError:
		return "adapter"
	case *lumen.NotCallable:
		return "not_callable"
	case *lumen.DivideByZero:
		return "divide_by_zero"
	case *lumen.StepLimit:
		return "step_limit"
	case *lumen.StackOverflow:
		return "stack_overflow"
	}
	return "other"
}
