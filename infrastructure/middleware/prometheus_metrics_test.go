package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/ports"
)

// newTestMetrics registers collectors on a private registry so tests never
// collide on metric names.
func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm, _ := newTestMetrics(t)

	assert.NotNil(t, pm.runDuration)
	assert.NotNil(t, pm.runsTotal)
	assert.NotNil(t, pm.runFailures)
	assert.NotNil(t, pm.nodeOutcomes)
	assert.NotNil(t, pm.runSize)
	assert.NotNil(t, pm.winnersPerNode)
	assert.NotNil(t, pm.operations)
	assert.NotNil(t, pm.systemGauges)

	var _ ports.MetricsCollector = pm
}

func TestNewPrometheusMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)

	assert.Panics(t, func() { NewPrometheusMetrics(reg) })
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	labels := map[string]string{"engine": "e1", "outcome": "success"}

	tests := []struct {
		name      string
		metric    string
		value     float64
		labels    map[string]string
		collector func(pm *PrometheusMetrics) prometheus.Collector
	}{
		{
			name:   "runs total",
			metric: ports.MetricRunsTotal,
			value:  1,
			labels: labels,
			collector: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.runsTotal.WithLabelValues("e1", "success")
			},
		},
		{
			name:   "failures by reason",
			metric: ports.MetricRunFailures,
			value:  1,
			labels: map[string]string{"engine": "e1", "reason": "domain_mismatch"},
			collector: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.runFailures.WithLabelValues("e1", "domain_mismatch")
			},
		},
		{
			name:   "failure without reason",
			metric: ports.MetricRunFailures,
			value:  1,
			labels: map[string]string{"engine": "e1"},
			collector: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.runFailures.WithLabelValues("e1", "unknown")
			},
		},
		{
			name:   "contested nodes",
			metric: ports.MetricContestedNodes,
			value:  4,
			labels: labels,
			collector: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.nodeOutcomes.WithLabelValues("e1", "contested")
			},
		},
		{
			name:   "undecided nodes",
			metric: ports.MetricUndecidedNodes,
			value:  2,
			labels: labels,
			collector: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.nodeOutcomes.WithLabelValues("e1", "undecided")
			},
		},
		{
			name:   "unrouted counter without engine label",
			metric: "custom_counter",
			value:  3,
			labels: nil,
			collector: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.operations.WithLabelValues("custom_counter", "unknown")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, _ := newTestMetrics(t)
			pm.RecordCounter(tt.metric, tt.value, tt.labels)
			pm.RecordCounter(tt.metric, tt.value, tt.labels)
			assert.Equal(t, 2*tt.value, testutil.ToFloat64(tt.collector(pm)))
		})
	}
}

func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm, _ := newTestMetrics(t)
	labels := map[string]string{"engine": "e1"}

	pm.RecordGauge(ports.MetricGraphNodes, 59, labels)
	pm.RecordGauge(ports.MetricCandidates, 2, labels)
	pm.RecordGauge("custom_gauge", 7.5, labels)
	pm.RecordGauge(ports.MetricGraphNodes, 3, labels)

	assert.Equal(t, 3.0, testutil.ToFloat64(pm.runSize.WithLabelValues("e1", "nodes")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.runSize.WithLabelValues("e1", "candidates")))
	assert.Equal(t, 7.5, testutil.ToFloat64(pm.systemGauges.WithLabelValues("custom_gauge", "e1")))
}

func TestPrometheusMetrics_RecordLatencyAndHistogram(t *testing.T) {
	pm, reg := newTestMetrics(t)
	labels := map[string]string{"engine": "e1", "outcome": "success"}

	pm.RecordLatency(ports.MetricRunDuration, 250*time.Millisecond, labels)
	pm.RecordHistogram(ports.MetricWinnersPerNode, 0, labels)
	pm.RecordHistogram(ports.MetricWinnersPerNode, 2, labels)
	pm.RecordHistogram("custom_histogram", 0.5, labels)

	assert.Equal(t, 2, testutil.CollectAndCount(pm.runDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.winnersPerNode))

	expected := `
# HELP ballot_winners_per_node Distribution of winner set sizes across nodes.
# TYPE ballot_winners_per_node histogram
ballot_winners_per_node_bucket{engine="e1",le="0"} 1
ballot_winners_per_node_bucket{engine="e1",le="1"} 1
ballot_winners_per_node_bucket{engine="e1",le="2"} 2
ballot_winners_per_node_bucket{engine="e1",le="3"} 2
ballot_winners_per_node_bucket{engine="e1",le="4"} 2
ballot_winners_per_node_bucket{engine="e1",le="5"} 2
ballot_winners_per_node_bucket{engine="e1",le="+Inf"} 2
ballot_winners_per_node_sum{engine="e1"} 2
ballot_winners_per_node_count{engine="e1"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ballot_winners_per_node"))
}

func TestPrometheusMetrics_LabelHandling(t *testing.T) {
	pm, _ := newTestMetrics(t)

	tests := []struct {
		name   string
		labels map[string]string
	}{
		{"nil labels map", nil},
		{"empty labels map", map[string]string{}},
		{"empty engine label", map[string]string{"engine": ""}},
		{"unrelated labels", map[string]string{"other": "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				pm.RecordLatency("test_op", 100*time.Millisecond, tt.labels)
				pm.RecordCounter("test_counter", 1.0, tt.labels)
				pm.RecordGauge("test_gauge", 42.0, tt.labels)
				pm.RecordHistogram("test_hist", 0.5, tt.labels)
			})
		})
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(pm.operations.WithLabelValues("test_counter", "unknown")))
}

func TestPrometheusMetrics_NegativeCounterPanics(t *testing.T) {
	pm, _ := newTestMetrics(t)

	// Prometheus counters cannot decrease.
	assert.Panics(t, func() {
		pm.RecordCounter(ports.MetricRunsTotal, -1.0, map[string]string{"engine": "e1"})
	})
}

func BenchmarkPrometheusMetrics_RecordCounter(b *testing.B) {
	pm := NewPrometheusMetrics(prometheus.NewRegistry())
	labels := map[string]string{"engine": "bench", "outcome": "success"}

	b.ResetTimer()
	for range b.N {
		pm.RecordCounter(ports.MetricRunsTotal, 1, labels)
	}
}
