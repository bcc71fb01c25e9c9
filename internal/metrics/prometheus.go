// Package metrics exposes Prometheus collectors for the trading pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Stage agent metrics
	StageCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autohedge_stage_calls_total",
			Help: "Total number of stage agent invocations",
		},
		[]string{"stage", "status"}, // status: success|error
	)

	StageRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autohedge_stage_retries_total",
			Help: "Total number of stage agent retry attempts",
		},
		[]string{"stage"},
	)

	StageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autohedge_stage_latency_seconds",
			Help:    "Stage agent latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"stage"},
	)

	StageTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autohedge_stage_tokens_total",
			Help: "Total tokens consumed by stage agents",
		},
		[]string{"stage"},
	)

	// Run metrics
	RunsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autohedge_runs_started_total",
			Help: "Total number of runs started",
		},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autohedge_run_duration_seconds",
			Help:    "End-to-end run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	SymbolOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autohedge_symbol_outcomes_total",
			Help: "Per-symbol pipeline outcomes by terminal status",
		},
		[]string{"status"},
	)

	// Persistence metrics
	JournalAppends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autohedge_journal_appends_total",
			Help: "Total trade record journal appends",
		},
		[]string{"status"}, // status: success|error
	)

	// Gateway metrics
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autohedge_orders_submitted_total",
			Help: "Total orders submitted to the execution gateway",
		},
		[]string{"status"}, // status: accepted|rejected
	)

	// Eventing metrics
	KafkaPublishErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autohedge_kafka_publish_errors_total",
			Help: "Total failed Kafka event publishes",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(StageCalls)
	prometheus.MustRegister(StageRetries)
	prometheus.MustRegister(StageLatency)
	prometheus.MustRegister(StageTokens)

	prometheus.MustRegister(RunsStarted)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(SymbolOutcomes)

	prometheus.MustRegister(JournalAppends)
	prometheus.MustRegister(OrdersSubmitted)
	prometheus.MustRegister(KafkaPublishErrors)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStageCall records one stage agent invocation
func RecordStageCall(stage string, latency time.Duration, tokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	StageCalls.WithLabelValues(stage, status).Inc()
	StageLatency.WithLabelValues(stage).Observe(latency.Seconds())

	if tokens > 0 {
		StageTokens.WithLabelValues(stage).Add(float64(tokens))
	}
}

// RecordJournalAppend records a journal write
func RecordJournalAppend(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	JournalAppends.WithLabelValues(status).Inc()
}
