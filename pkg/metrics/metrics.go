// Package metrics exposes Prometheus metrics for document operations and
// the upload pipeline.
package metrics

import (
	"time"

	// Packages
	prometheus "github.com/prometheus/client_golang/prometheus"
	promauto "github.com/prometheus/client_golang/prometheus/promauto"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Metrics holds the Prometheus metrics for the document manager. A nil
// *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec   // dms_requests_total{operation,status}
	RequestDuration *prometheus.HistogramVec // dms_request_duration_seconds{operation}
	BytesUploaded   prometheus.Counter       // dms_bytes_uploaded_total
	BytesDownloaded prometheus.Counter       // dms_bytes_downloaded_total
	Documents       prometheus.Gauge         // dms_documents
	Trashed         prometheus.Gauge         // dms_documents_trashed
	PendingUploads  prometheus.Gauge         // dms_pending_uploads
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	StatusOK    = "ok"
	StatusError = "error"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New registers the metrics with a registry. A nil registry uses the
// default registerer.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Metrics{
		RequestsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "dms_requests_total",
			Help: "Total document operations by operation and status",
		}, []string{"operation", "status"}),

		RequestDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dms_request_duration_seconds",
			Help:    "Document operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		BytesUploaded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "dms_bytes_uploaded_total",
			Help: "Total bytes of committed uploads",
		}),

		BytesDownloaded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "dms_bytes_downloaded_total",
			Help: "Total bytes of document content served",
		}),

		Documents: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "dms_documents",
			Help: "Number of live documents",
		}),

		Trashed: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "dms_documents_trashed",
			Help: "Number of documents in the trash",
		}),

		PendingUploads: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "dms_pending_uploads",
			Help: "Number of presigned uploads awaiting commit",
		}),
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RecordRequest records the outcome and duration of an operation
func (m *Metrics) RecordRequest(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordUpload records bytes committed
func (m *Metrics) RecordUpload(bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.BytesUploaded.Add(float64(bytes))
}

// RecordDownload records bytes served
func (m *Metrics) RecordDownload(bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.BytesDownloaded.Add(float64(bytes))
}

// SetDocuments sets the live and trashed document counts
func (m *Metrics) SetDocuments(live, trashed int) {
	if m == nil {
		return
	}
	m.Documents.Set(float64(live))
	m.Trashed.Set(float64(trashed))
}

// SetPending sets the number of presigned uploads awaiting commit
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.PendingUploads.Set(float64(n))
}
