package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Metric names recorded by the consensus engine. Collectors route on these.
const (
	// MetricRunDuration is the latency of one consensus run.
	MetricRunDuration = "consensus_run"
	// MetricRunsTotal counts finished runs, labeled by outcome.
	MetricRunsTotal = "consensus_runs_total"
	// MetricRunFailures counts failed runs, labeled by reason.
	MetricRunFailures = "consensus_run_failures_total"
	// MetricContestedNodes counts nodes whose winner set holds a tie.
	MetricContestedNodes = "consensus_contested_nodes_total"
	// MetricUndecidedNodes counts nodes with no winner.
	MetricUndecidedNodes = "consensus_undecided_nodes_total"
	// MetricGraphNodes is the node count of the last run.
	MetricGraphNodes = "consensus_graph_nodes"
	// MetricCandidates is the candidate count of the last run.
	MetricCandidates = "consensus_candidates"
	// MetricWinnersPerNode is the distribution of winner set sizes.
	MetricWinnersPerNode = "consensus_winners_per_node"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like runs, failures, ties, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like the size of the last run.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like per-node scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics discards every measurement. It is the collector used when a
// caller does not supply one.
type NoopMetrics struct{}

var _ MetricsCollector = NoopMetrics{}

// RecordLatency implements MetricsCollector.
func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}

// RecordCounter implements MetricsCollector.
func (NoopMetrics) RecordCounter(string, float64, map[string]string) {}

// RecordGauge implements MetricsCollector.
func (NoopMetrics) RecordGauge(string, float64, map[string]string) {}

// RecordHistogram implements MetricsCollector.
func (NoopMetrics) RecordHistogram(string, float64, map[string]string) {}

// RunObserver receives lifecycle callbacks for consensus runs.
// Implementations must be safe for concurrent runs: any per-run state
// travels in the context returned by RunStarted.
type RunObserver interface {
	// RunStarted is called before the pipeline executes. The returned
	// context is used for the rest of the run.
	RunStarted(ctx context.Context, runID string, nodes, candidates int) context.Context

	// RunFinished is called once per run with either a result or an error.
	RunFinished(ctx context.Context, result *domain.Result, elapsed time.Duration, err error)
}

// NoopObserver ignores every callback.
type NoopObserver struct{}

var _ RunObserver = NoopObserver{}

// RunStarted implements RunObserver.
func (NoopObserver) RunStarted(ctx context.Context, _ string, _, _ int) context.Context { return ctx }

// RunFinished implements RunObserver.
func (NoopObserver) RunFinished(context.Context, *domain.Result, time.Duration, error) {}
