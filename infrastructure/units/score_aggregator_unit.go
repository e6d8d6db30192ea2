package units

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*ScoreAggregatorUnit)(nil)

// MaxAggregatorConcurrency caps the scoring worker pool.
const MaxAggregatorConcurrency = 256

// ScoreAggregatorUnit scores every candidate against the graph and
// assembles the results into a ScoreTable.
// Candidates are scored concurrently on a bounded worker pool. Results are
// collected by candidate position, so table columns always follow the
// CandidateSet order regardless of completion order.
// The unit is stateless and thread-safe for concurrent execution.
type ScoreAggregatorUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// config contains the validated configuration parameters.
	config ScoreAggregatorConfig
	tracer trace.Tracer
}

// ScoreAggregatorConfig defines the configuration parameters for the
// ScoreAggregatorUnit.
type ScoreAggregatorConfig struct {
	// MaxConcurrency bounds the number of candidates scored at once.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency" validate:"min=1,max=256"`

	// StrictStatus rejects status values outside {0, 1}.
	StrictStatus bool `yaml:"strict_status" json:"strict_status"`
}

// DefaultScoreAggregatorConfig returns a configuration sized to the host.
func DefaultScoreAggregatorConfig() ScoreAggregatorConfig {
	return ScoreAggregatorConfig{
		MaxConcurrency: min(runtime.NumCPU(), MaxAggregatorConcurrency),
		StrictStatus:   true,
	}
}

// ScoreOptions returns the per-candidate scoring options implied by c.
func (c ScoreAggregatorConfig) ScoreOptions() ScoreOptions {
	return ScoreOptions{StrictStatus: c.StrictStatus}
}

// NewScoreAggregatorUnit creates a ScoreAggregatorUnit with validated
// configuration.
func NewScoreAggregatorUnit(name string, config ScoreAggregatorConfig) (*ScoreAggregatorUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ScoreAggregatorUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer("score-aggregator-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (sau *ScoreAggregatorUnit) Name() string { return sau.name }

// Execute scores each candidate in domain.KeyCandidates against
// domain.KeyGraph and stores the assembled table under
// domain.KeyScoreTable.
//
// The first scoring failure cancels the remaining work and is returned;
// no table is written in that case. An empty candidate set fails with
// EmptyTableError because the table would have no columns.
func (sau *ScoreAggregatorUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	ctx, span := sau.tracer.Start(ctx, "ScoreAggregatorUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "score_aggregator"),
			attribute.String("unit.id", sau.name),
			attribute.Int("config.max_concurrency", sau.config.MaxConcurrency),
			attribute.Bool("config.strict_status", sau.config.StrictStatus),
		),
	)
	defer span.End()

	table, err := sau.aggregate(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return state, err
	}

	span.SetAttributes(
		attribute.Int("table.rows", table.Rows()),
		attribute.Int("table.columns", table.Columns()),
	)
	return domain.With(state, domain.KeyScoreTable, table), nil
}

func (sau *ScoreAggregatorUnit) aggregate(ctx context.Context, state domain.State) (domain.ScoreTable, error) {
	graph, err := domain.Require(state, domain.KeyGraph)
	if err != nil {
		return domain.ScoreTable{}, fmt.Errorf("unit %s: %w", sau.name, err)
	}
	if graph == nil {
		return domain.ScoreTable{}, fmt.Errorf("unit %s: %w", sau.name, ErrNilGraph)
	}

	candidates, err := domain.Require(state, domain.KeyCandidates)
	if err != nil {
		return domain.ScoreTable{}, fmt.Errorf("unit %s: %w", sau.name, err)
	}
	if candidates.Len() == 0 {
		return domain.ScoreTable{}, &domain.EmptyTableError{Rows: graph.Len(), Columns: 0}
	}

	opts := sau.config.ScoreOptions()
	vectors := make([]domain.ScoreVector, candidates.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sau.config.MaxConcurrency)

	for i := range candidates.Len() {
		candidate := candidates.At(i)
		g.Go(func() error {
			// Skip queued work once another candidate has failed.
			if err := gctx.Err(); err != nil {
				return err
			}

			v, err := ScoreCandidate(graph, candidate, opts)
			if err != nil {
				return fmt.Errorf("unit %s: scoring candidate %q: %w", sau.name, candidate.Name, err)
			}

			// Each worker owns exactly one slot.
			vectors[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.ScoreTable{}, err
	}

	table, err := domain.NewScoreTable(graph.Nodes(), vectors)
	if err != nil {
		return domain.ScoreTable{}, fmt.Errorf("unit %s: %w", sau.name, err)
	}
	return table, nil
}

// Validate checks if the unit is properly configured and ready for execution.
func (sau *ScoreAggregatorUnit) Validate() error {
	if err := validate.Struct(sau.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
