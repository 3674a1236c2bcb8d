// Package metrics exposes Prometheus collectors for remote store calls,
// sign-in attempts and the web API.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "opsdash"

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeRejected = "rejected"
)

type Metrics struct {
	reg prometheus.Gatherer

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	signIns       *prometheus.CounterVec
	requests      *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "queries_total",
			Help:      "Remote store calls by operation, resource and outcome.",
		}, []string{"op", "resource", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "query_duration_seconds",
			Help:      "Latency of remote store calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "resource"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of web API requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.queries, m.queryDuration, m.signIns, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, common.ErrInvalidCredentials):
		return OutcomeRejected
	}
	return OutcomeError
}

// ObserveQuery implements remote.Observer.
func (m *Metrics) ObserveQuery(_ context.Context, op, resource string, d time.Duration, err error) {
	m.queries.WithLabelValues(op, resource, outcome(err)).Inc()
	m.queryDuration.WithLabelValues(op, resource).Observe(d.Seconds())
}

// ObserveSignIn counts one sign-in attempt.
func (m *Metrics) ObserveSignIn(err error) {
	m.signIns.WithLabelValues(outcome(err)).Inc()
}

// ObserveRequest records one served web API request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
