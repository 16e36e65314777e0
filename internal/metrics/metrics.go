// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so that tests can build as many
// instances as they like. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recomputes      *prometheus.CounterVec
	spentUpdates    prometheus.Counter
	skippedRecords  *prometheus.CounterVec
	importedRows    *prometheus.CounterVec
}

// New creates the registry and registers every collector in it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finanzas_http_requests_total",
				Help: "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finanzas_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		recomputes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finanzas_budget_recomputations_total",
				Help: "Budget spent recomputation passes by trigger.",
			},
			[]string{"trigger"},
		),
		spentUpdates: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "finanzas_budget_spent_updates_total",
				Help: "Budgets whose stored spent value was corrected.",
			},
		),
		skippedRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finanzas_skipped_records_total",
				Help: "Records excluded from aggregation because of unusable dates.",
			},
			[]string{"source"},
		),
		importedRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finanzas_import_rows_total",
				Help: "CSV import rows by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordRecompute records a recomputation pass and its outcome.
func (m *Metrics) RecordRecompute(trigger string, changed, skipped int) {
	if m == nil {
		return
	}
	m.recomputes.WithLabelValues(trigger).Inc()
	m.spentUpdates.Add(float64(changed))
	if skipped > 0 {
		m.skippedRecords.WithLabelValues("recompute").Add(float64(skipped))
	}
}

// RecordSkipped records records excluded while building a view.
func (m *Metrics) RecordSkipped(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedRecords.WithLabelValues(source).Add(float64(n))
}

// RecordImport records the outcome counts of a CSV import.
func (m *Metrics) RecordImport(created, updated, skipped int) {
	if m == nil {
		return
	}
	m.importedRows.WithLabelValues("created").Add(float64(created))
	m.importedRows.WithLabelValues("updated").Add(float64(updated))
	m.importedRows.WithLabelValues("skipped").Add(float64(skipped))
}
