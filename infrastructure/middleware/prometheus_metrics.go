// Package middleware provides cross-cutting concerns for the consensus
// engine: Prometheus metrics and OpenTelemetry run tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-ballot/internal/ports"
)

// metricsNamespace prefixes every collector.
const metricsNamespace = "ballot"

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks run volume, failures by reason, per-node outcomes,
// and run latency for the consensus engine.
type PrometheusMetrics struct {
	runDuration    *prometheus.HistogramVec
	runsTotal      *prometheus.CounterVec
	runFailures    *prometheus.CounterVec
	nodeOutcomes   *prometheus.CounterVec
	runSize        *prometheus.GaugeVec
	winnersPerNode *prometheus.HistogramVec
	operations     *prometheus.CounterVec
	systemGauges   *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its collectors on reg. Pass prometheus.DefaultRegisterer to expose them
// on the global registry, or a fresh prometheus.NewRegistry() in tests.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of consensus runs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "engine", "outcome"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "runs_total",
				Help:      "Total number of finished consensus runs.",
			},
			[]string{"engine", "outcome"},
		),
		runFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "run_failures_total",
				Help:      "Failed consensus runs by failure reason.",
			},
			[]string{"engine", "reason"},
		),
		nodeOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "node_outcomes_total",
				Help:      "Nodes whose winner set was contested or empty.",
			},
			[]string{"engine", "outcome"},
		),
		runSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "last_run_size",
				Help:      "Node and candidate counts of the most recent run.",
			},
			[]string{"engine", "dimension"},
		),
		winnersPerNode: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "winners_per_node",
				Help:      "Distribution of winner set sizes across nodes.",
				Buckets:   prometheus.LinearBuckets(0, 1, 6),
			},
			[]string{"engine"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Counters recorded under names the collector does not route.",
			},
			[]string{"operation", "engine"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "system_state",
				Help:      "Gauges recorded under names the collector does not route.",
			},
			[]string{"metric", "engine"},
		),
	}
}

// engineLabel returns the engine label, defaulting to "unknown".
func engineLabel(labels map[string]string) string {
	if engine := labels["engine"]; engine != "" {
		return engine
	}
	return "unknown"
}

// outcomeLabel returns the outcome label, defaulting to "unknown".
func outcomeLabel(labels map[string]string) string {
	if outcome := labels["outcome"]; outcome != "" {
		return outcome
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.runDuration.WithLabelValues(operation, engineLabel(labels), outcomeLabel(labels)).
		Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	engine := engineLabel(labels)

	switch metric {
	case ports.MetricRunsTotal:
		pm.runsTotal.WithLabelValues(engine, outcomeLabel(labels)).Add(value)
	case ports.MetricRunFailures:
		reason := labels["reason"]
		if reason == "" {
			reason = "unknown"
		}
		pm.runFailures.WithLabelValues(engine, reason).Add(value)
	case ports.MetricContestedNodes:
		pm.nodeOutcomes.WithLabelValues(engine, "contested").Add(value)
	case ports.MetricUndecidedNodes:
		pm.nodeOutcomes.WithLabelValues(engine, "undecided").Add(value)
	default:
		pm.operations.WithLabelValues(metric, engine).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	engine := engineLabel(labels)

	switch metric {
	case ports.MetricGraphNodes:
		pm.runSize.WithLabelValues(engine, "nodes").Set(value)
	case ports.MetricCandidates:
		pm.runSize.WithLabelValues(engine, "candidates").Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric, engine).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Names other than the winner set size
// are routed to the latency histogram, interpreted as seconds.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	engine := engineLabel(labels)

	switch metric {
	case ports.MetricWinnersPerNode:
		pm.winnersPerNode.WithLabelValues(engine).Observe(value)
	default:
		pm.runDuration.WithLabelValues(metric, engine, outcomeLabel(labels)).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
