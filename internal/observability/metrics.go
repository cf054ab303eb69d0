package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route, method and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	// AnalysesTotal counts analyses by outcome (ok, degraded, failed).
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of resume analyses by outcome",
		},
		[]string{"outcome"},
	)
	// AnalysisDuration observes end-to-end analysis latency.
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Resume analysis duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	// HybridScoreHistogram tracks the distribution of hybrid scores [0,100].
	HybridScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_hybrid_score",
			Help:    "Distribution of hybrid scores (0-100)",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// RetrievalTotal counts evidence retrievals by mode (vector, fallback).
	RetrievalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_total",
			Help: "Total number of evidence retrievals by mode",
		},
		[]string{"mode"},
	)
	// RetrievalDuration observes index build plus query latency.
	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrieval_duration_seconds",
			Help:    "Evidence retrieval duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	// FeedbackTotal counts feedback reports by narrative path.
	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_total",
			Help: "Total number of feedback reports by narrative path",
		},
		[]string{"type"},
	)

	// AIRequestsTotal counts outbound AI requests by provider and operation.
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation", "status"},
	)
)

var initMetricsOnce sync.Once

// InitMetrics registers all Prometheus collectors once per process.
func InitMetrics() {
	initMetricsOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AnalysesTotal,
			AnalysisDuration,
			HybridScoreHistogram,
			RetrievalTotal,
			RetrievalDuration,
			FeedbackTotal,
			AIRequestsTotal,
		)
	})
}
