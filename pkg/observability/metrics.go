// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the auskunft service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM and embedding call
// latencies, ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auskunft_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auskunft_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "path"},
	)

	// DocumentsIngestedTotal counts documents submitted for ingestion.
	DocumentsIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auskunft_documents_ingested_total",
			Help: "Documents ingested",
		},
	)

	// ChunksIngestedTotal counts chunks appended to the document store.
	ChunksIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auskunft_chunks_ingested_total",
			Help: "Chunks ingested",
		},
	)

	// ChunksTotal tracks the number of chunks currently in the document store.
	ChunksTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "auskunft_chunks_total",
			Help: "Chunks currently stored",
		},
	)

	// IndexBuildsTotal counts vector index builds by outcome.
	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auskunft_index_builds_total",
			Help: "Index builds",
		},
		[]string{"status"},
	)

	// IndexBuildDuration records index build duration in seconds, including
	// the embedding calls.
	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auskunft_index_build_duration_seconds",
			Help:    "Index build duration",
			Buckets: LLMBuckets,
		},
	)

	// QuestionsTotal counts questions by answer status.
	QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auskunft_questions_total",
			Help: "Questions asked",
		},
		[]string{"status"},
	)

	// ProviderRequestsTotal counts requests sent to the model provider.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auskunft_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"operation", "status"},
	)

	// ProviderRequestDuration records model provider latency in seconds.
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auskunft_provider_request_duration_seconds",
			Help:    "Provider request duration",
			Buckets: LLMBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DocumentsIngestedTotal,
		ChunksIngestedTotal,
		ChunksTotal,
		IndexBuildsTotal,
		IndexBuildDuration,
		QuestionsTotal,
		ProviderRequestsTotal,
		ProviderRequestDuration,
	)
}
