package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	InvoicesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_generated_total",
		Help: "Total PDF invoices generated",
	})

	PDFRenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pdf_render_duration_seconds",
		Help:    "PDF render latency by backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "invoice_sessions_active",
		Help: "Invoice sessions currently held in memory",
	})
)
