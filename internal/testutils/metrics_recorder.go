package testutils

import (
	"sync"
	"time"

	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.MetricsCollector = (*MetricsRecorder)(nil)

// MetricsRecorder is an in-memory ports.MetricsCollector for assertions.
// It is safe for concurrent use.
type MetricsRecorder struct {
	mu         sync.Mutex
	latencies  map[string][]time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
	labels     map[string]map[string]string
}

// NewMetricsRecorder creates an empty recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{
		latencies:  make(map[string][]time.Duration),
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
		labels:     make(map[string]map[string]string),
	}
}

// RecordLatency implements ports.MetricsCollector.
func (m *MetricsRecorder) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies[operation] = append(m.latencies[operation], duration)
	m.labels[operation] = labels
}

// RecordCounter implements ports.MetricsCollector.
func (m *MetricsRecorder) RecordCounter(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metric] += value
	m.labels[metric] = labels
}

// RecordGauge implements ports.MetricsCollector.
func (m *MetricsRecorder) RecordGauge(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[metric] = value
	m.labels[metric] = labels
}

// RecordHistogram implements ports.MetricsCollector.
func (m *MetricsRecorder) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[metric] = append(m.histograms[metric], value)
	m.labels[metric] = labels
}

// Counter returns the accumulated value of a counter.
func (m *MetricsRecorder) Counter(metric string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[metric]
}

// Gauge returns the last value set on a gauge.
func (m *MetricsRecorder) Gauge(metric string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[metric]
}

// Latencies returns every duration recorded for an operation.
func (m *MetricsRecorder) Latencies(operation string) []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.latencies[operation]...)
}

// Labels returns the labels of the last recording under a name.
func (m *MetricsRecorder) Labels(name string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.labels[name]
}
