// Package metrics exposes Prometheus collectors for the HTTP layer and list saves.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create as many as they like
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	listsSaved      *prometheus.CounterVec
	reconcileOps    *prometheus.CounterVec
	stageOps        *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		listsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todolists_lists_saved_total",
				Help: "Lists saved from a stage, by whether the list was new",
			},
			[]string{"kind"},
		),
		reconcileOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todolists_reconcile_operations_total",
				Help: "Item rows written when saving a stage",
			},
			[]string{"op"},
		),
		stageOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todolists_stage_operations_total",
				Help: "Edits applied to staged lists",
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.listsSaved, m.reconcileOps, m.stageOps)
	return m
}

// ObserveHTTP records one served request. path is the route pattern, not the raw URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ListSaved counts a save; isNew selects the "new" or "existing" label
func (m *Metrics) ListSaved(isNew bool) {
	kind := "existing"
	if isNew {
		kind = "new"
	}
	m.listsSaved.WithLabelValues(kind).Inc()
}

// Reconciled counts the rows a save inserted, updated and deleted
func (m *Metrics) Reconciled(inserts, updates, deletes int) {
	m.reconcileOps.WithLabelValues("insert").Add(float64(inserts))
	m.reconcileOps.WithLabelValues("update").Add(float64(updates))
	m.reconcileOps.WithLabelValues("delete").Add(float64(deletes))
}

// StageOp counts one staging edit such as "append" or "reorder"
func (m *Metrics) StageOp(op string) {
	m.stageOps.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
