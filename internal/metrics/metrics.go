// Package metrics exposes Prometheus instrumentation for backend calls,
// CSV imports, bulk deletes and view refreshes.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set groups the collectors registered by this process. A nil *Set records
// nothing.
type Set struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	importRows  *prometheus.CounterVec
	deletes     *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
}

var defaultSet = sync.OnceValue(func() *Set {
	return New(prometheus.NewRegistry())
})

// Default returns the process-wide metric set.
func Default() *Set {
	return defaultSet()
}

// New registers a fresh metric set on reg. Tests use their own registry.
func New(reg *prometheus.Registry) *Set {
	f := promauto.With(reg)
	return &Set{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmadb",
			Name:      "api_requests_total",
			Help:      "Backend requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pharmadb",
			Name:      "api_request_duration_seconds",
			Help:      "Backend request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		importRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmadb",
			Name:      "import_rows_total",
			Help:      "CSV rows processed by result.",
		}, []string{"table", "result"}),
		deletes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmadb",
			Name:      "deletes_total",
			Help:      "Row deletions by result.",
		}, []string{"table", "result"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmadb",
			Name:      "view_refreshes_total",
			Help:      "View refreshes by view and outcome.",
		}, []string{"view", "outcome"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRequest records one backend call.
func (s *Set) ObserveRequest(op string, d time.Duration, err error) {
	if s == nil {
		return
	}
	s.apiRequests.WithLabelValues(op, outcome(err)).Inc()
	s.apiLatency.WithLabelValues(op).Observe(d.Seconds())
}

// ImportRows records the tally of one CSV import.
func (s *Set) ImportRows(table string, succeeded, failed, skipped int) {
	if s == nil {
		return
	}
	s.importRows.WithLabelValues(table, "succeeded").Add(float64(succeeded))
	s.importRows.WithLabelValues(table, "failed").Add(float64(failed))
	s.importRows.WithLabelValues(table, "skipped").Add(float64(skipped))
}

// Delete records one row deletion.
func (s *Set) Delete(table string, err error) {
	if s == nil {
		return
	}
	s.deletes.WithLabelValues(table, outcome(err)).Inc()
}

// Refresh records one view refresh.
func (s *Set) Refresh(view string, err error) {
	if s == nil {
		return
	}
	s.refreshes.WithLabelValues(view, outcome(err)).Inc()
}

// Handler serves the set in the Prometheus exposition format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
