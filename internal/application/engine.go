// Package application provides the core orchestration for the consensus
// engine: configuration loading, the sequential unit pipeline, and the
// Engine that runs it.
package application

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahrav/go-ballot/infrastructure/units"
	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// Pipeline stage names.
const (
	pipelineID     = "consensus"
	aggregateStage = "aggregate"
	selectStage    = "select"
)

// Engine runs the consensus pipeline: score every candidate, assemble the
// score table, select per-node winners, and rank candidates.
// An Engine holds no per-run state and may be shared by concurrent callers.
type Engine struct {
	config   EngineConfig
	pipeline *Pipeline
	metrics  ports.MetricsCollector
	observer ports.RunObserver
	logger   *zap.Logger
	now      func() time.Time
	newRunID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics sets the collector that receives run metrics.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithObserver sets the run lifecycle observer.
func WithObserver(o ports.RunObserver) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// withClock overrides the timestamp source; used by tests.
func withClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine validates config and assembles the two-stage pipeline.
func NewEngine(config EngineConfig, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	aggregator, err := units.NewScoreAggregatorUnit(aggregateStage, config.Scoring)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s stage: %w", aggregateStage, err)
	}
	selector, err := units.NewWinnerSelectorUnit(selectStage)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s stage: %w", selectStage, err)
	}

	pipeline := NewPipeline(pipelineID)
	for _, u := range []ports.Unit{aggregator, selector} {
		if err := pipeline.Add(u); err != nil {
			return nil, fmt.Errorf("failed to assemble pipeline: %w", err)
		}
	}

	e := &Engine{
		config:   config,
		pipeline: pipeline,
		metrics:  ports.NoopMetrics{},
		observer: ports.NoopObserver{},
		logger:   zap.NewNop(),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	fields := []zap.Field{zap.String("engine", config.Metadata.Name)}
	for _, k := range slices.Sorted(maps.Keys(config.Metadata.Labels)) {
		fields = append(fields, zap.String("label."+k, config.Metadata.Labels[k]))
	}
	e.logger = e.logger.With(fields...)
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig { return e.config }

// Run scores every candidate over graph, selects per-node winners, and
// ranks the candidates. The graph is snapshotted once; any Neighborhood
// implementation is accepted.
//
// Run is all-or-nothing: a failure in any stage yields a nil Result and the
// stage's error, reachable with errors.As (for example
// *domain.DomainMismatchError or *domain.EmptyTableError).
func (e *Engine) Run(ctx context.Context, graph domain.Neighborhood, candidates domain.CandidateSet) (*domain.Result, error) {
	runID := e.newRunID()
	start := e.now()
	log := e.logger.With(zap.String("run_id", runID))

	g, err := domain.Snapshot(graph)
	if err != nil {
		e.recordFailure(log, 0, candidates.Len(), e.now().Sub(start), err)
		return nil, err
	}

	ctx = e.observer.RunStarted(ctx, runID, g.Len(), candidates.Len())
	log.Debug("consensus run started",
		zap.Int("nodes", g.Len()),
		zap.Int("candidates", candidates.Len()),
		zap.String("graph", g.Fingerprint()),
	)

	state := domain.NewState()
	state = domain.With(state, domain.KeyRunID, runID)
	state = domain.With(state, domain.KeyGraph, g)
	state = domain.With(state, domain.KeyCandidates, candidates)

	out, err := e.pipeline.Execute(ctx, state)
	if err == nil {
		err = requireOutputs(out)
	}
	elapsed := e.now().Sub(start)
	if err != nil {
		e.observer.RunFinished(ctx, nil, elapsed, err)
		e.recordFailure(log, g.Len(), candidates.Len(), elapsed, err)
		return nil, err
	}

	table, _ := domain.Get(out, domain.KeyScoreTable)
	winners, _ := domain.Get(out, domain.KeyWinners)

	result := &domain.Result{
		RunID:            runID,
		GraphFingerprint: g.Fingerprint(),
		Table:            table,
		Winners:          winners,
		Ranking:          winners.Ranking(),
		Timestamp:        e.now(),
	}

	e.observer.RunFinished(ctx, result, elapsed, nil)
	e.recordSuccess(g.Len(), candidates.Len(), winners, elapsed)
	log.Debug("consensus run finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("contested", winners.Contested()),
		zap.Int("undecided", winners.Undecided()),
	)
	return result, nil
}

// ScoreCandidate scores a single candidate over graph with the engine's
// status policy. It is a diagnostics entry point and records no metrics.
func (e *Engine) ScoreCandidate(ctx context.Context, graph domain.Neighborhood, candidate domain.Candidate) (domain.ScoreVector, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScoreVector{}, err
	}
	g, err := domain.Snapshot(graph)
	if err != nil {
		return domain.ScoreVector{}, err
	}
	return units.ScoreCandidate(g, candidate, e.config.Scoring.ScoreOptions())
}

// requireOutputs guards against a pipeline that finished without writing
// its results.
func requireOutputs(state domain.State) error {
	if _, err := domain.Require(state, domain.KeyScoreTable); err != nil {
		return err
	}
	_, err := domain.Require(state, domain.KeyWinners)
	return err
}

func (e *Engine) labels(outcome string) map[string]string {
	return map[string]string{
		"engine":  e.config.Metadata.Name,
		"outcome": outcome,
	}
}

func (e *Engine) recordSuccess(nodes, candidates int, winners domain.WinnerAssignment, elapsed time.Duration) {
	labels := e.labels("success")
	e.metrics.RecordLatency(ports.MetricRunDuration, elapsed, labels)
	e.metrics.RecordCounter(ports.MetricRunsTotal, 1, labels)
	e.metrics.RecordCounter(ports.MetricContestedNodes, float64(winners.Contested()), labels)
	e.metrics.RecordCounter(ports.MetricUndecidedNodes, float64(winners.Undecided()), labels)
	e.metrics.RecordGauge(ports.MetricGraphNodes, float64(nodes), labels)
	e.metrics.RecordGauge(ports.MetricCandidates, float64(candidates), labels)
	for i := range winners.Len() {
		_, set := winners.At(i)
		e.metrics.RecordHistogram(ports.MetricWinnersPerNode, float64(len(set)), labels)
	}
}

func (e *Engine) recordFailure(log *zap.Logger, nodes, candidates int, elapsed time.Duration, err error) {
	labels := e.labels("failure")
	e.metrics.RecordLatency(ports.MetricRunDuration, elapsed, labels)
	e.metrics.RecordCounter(ports.MetricRunsTotal, 1, labels)

	reason := FailureReason(err)
	failure := e.labels("failure")
	failure["reason"] = reason
	e.metrics.RecordCounter(ports.MetricRunFailures, 1, failure)

	log.Warn("consensus run failed",
		zap.String("reason", reason),
		zap.Int("nodes", nodes),
		zap.Int("candidates", candidates),
		zap.Error(err),
	)
}

// FailureReason classifies a run error into a short metric label.
func FailureReason(err error) string {
	var (
		mismatch     *domain.DomainMismatchError
		inconsistent *domain.InconsistentGraphError
		empty        *domain.EmptyTableError
		invalid      *domain.InvalidStatusValueError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &mismatch):
		return "domain_mismatch"
	case errors.As(err, &inconsistent):
		return "inconsistent_graph"
	case errors.As(err, &empty):
		return "empty_table"
	case errors.As(err, &invalid):
		return "invalid_status"
	case errors.Is(err, domain.ErrInvalidGraph):
		return "invalid_graph"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
