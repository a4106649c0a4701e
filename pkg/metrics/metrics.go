package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReceiverEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiver_events_total",
			Help: "Total number of webhook requests handled by the receiver, by outcome",
		},
		[]string{"outcome"},
	)

	ReceiverEnqueueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiver_enqueue_total",
			Help: "Total number of enqueue attempts, by status",
		},
		[]string{"status"},
	)

	ReceiverRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiver_request_duration_ms",
			Help:    "Webhook request handling duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"outcome"},
	)

	WorkerRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_records_total",
			Help: "Total number of queue records processed by the worker, by status",
		},
		[]string{"status"},
	)

	WorkerBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worker_batch_size",
			Help:    "Number of records per consumed batch",
			Buckets: []float64{1, 2, 5, 10},
		},
	)

	KnowledgeQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "knowledge_query_duration_ms",
			Help:    "Knowledge backend query duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"status"},
	)

	QueueReceiveErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_receive_errors_total",
			Help: "Total number of failed queue receive calls",
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts, by operation",
		},
		[]string{"service", "operation"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker, by state",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failed requests through a circuit breaker",
		},
		[]string{"name"},
	)
)

func RegisterReceiverMetrics() {
	prometheus.MustRegister(
		ReceiverEventsTotal,
		ReceiverEnqueueTotal,
		ReceiverRequestDuration,
	)
}

func RegisterWorkerMetrics() {
	prometheus.MustRegister(
		WorkerRecordsTotal,
		WorkerBatchSize,
		KnowledgeQueryDuration,
		QueueReceiveErrorsTotal,
		RetryAttemptsTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func ObserveReceiverRequest(duration time.Duration, outcome string) {
	ReceiverRequestDuration.WithLabelValues(outcome).Observe(float64(duration.Milliseconds()))
}

func ObserveKnowledgeQuery(duration time.Duration, status string) {
	KnowledgeQueryDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}
