package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/goreporte/internal/domain"
)

// Metrics holds all Prometheus metrics of the report cycle. It implements
// usecase.MetricsRecorder.
type Metrics struct {
	// Query boundary metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Report metrics
	ReportsGenerated *prometheus.CounterVec
	ReportInvoices   prometheus.Histogram
	TotalMismatches  prometheus.Counter

	// Export metrics
	ExportsTotal prometheus.Counter
	ExportBytes  prometheus.Histogram

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goreporte_report_queries_total",
				Help: "Total report queries by outcome",
			},
			[]string{"outcome"},
		),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goreporte_report_query_duration_seconds",
			Help:    "Duration of report queries",
			Buckets: prometheus.DefBuckets,
		}),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goreporte_report_cache_lookups_total",
				Help: "Report cache lookups by result",
			},
			[]string{"result"},
		),

		ReportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goreporte_reports_generated_total",
				Help: "Total reconciled reports by classification",
			},
			[]string{"classification"},
		),
		ReportInvoices: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goreporte_report_invoices",
			Help:    "Number of invoices per reconciled report",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		}),
		TotalMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "goreporte_report_total_mismatches_total",
			Help: "Reports whose source total differs from the recomputed total",
		}),

		ExportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "goreporte_exports_total",
			Help: "Total exported documents",
		}),
		ExportBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goreporte_export_bytes",
			Help:    "Size of exported documents",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		}),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goreporte_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
	}
}

// ObserveQuery records one query boundary call.
func (m *Metrics) ObserveQuery(duration time.Duration, err error) {
	m.QueriesTotal.WithLabelValues(queryOutcome(err)).Inc()
	m.QueryDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordReport records a reconciled report.
func (m *Metrics) RecordReport(report *domain.Report) {
	if report == nil {
		return
	}
	m.ReportsGenerated.WithLabelValues(report.Classification().String()).Inc()
	m.ReportInvoices.Observe(float64(report.InvoiceCount()))
	if report.TotalMismatch() {
		m.TotalMismatches.Inc()
	}
}

func (m *Metrics) RecordExport(size int) {
	m.ExportsTotal.Inc()
	m.ExportBytes.Observe(float64(size))
}

func (m *Metrics) RecordAuth(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.AuthAttempts.WithLabelValues(status).Inc()
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrReportNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrQueryTimeout):
		return "timeout"
	default:
		return "error"
	}
}
