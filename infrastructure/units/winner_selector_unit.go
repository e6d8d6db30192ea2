package units

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*WinnerSelectorUnit)(nil)

// WinnerSelectorUnit turns a ScoreTable into per-node winner sets.
// Ties are preserved: every candidate sharing a node's maximal positive
// score wins that node. A node where every candidate scored zero has no
// winner. The unit is stateless and thread-safe for concurrent execution.
type WinnerSelectorUnit struct {
	name   string
	tracer trace.Tracer
}

// NewWinnerSelectorUnit creates a WinnerSelectorUnit.
func NewWinnerSelectorUnit(name string) (*WinnerSelectorUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &WinnerSelectorUnit{
		name:   name,
		tracer: otel.Tracer("winner-selector-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (wsu *WinnerSelectorUnit) Name() string { return wsu.name }

// Execute reads domain.KeyScoreTable and stores the winner assignment under
// domain.KeyWinners.
func (wsu *WinnerSelectorUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := wsu.tracer.Start(ctx, "WinnerSelectorUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "winner_selector"),
			attribute.String("unit.id", wsu.name),
		),
	)
	defer span.End()

	table, err := domain.Require(state, domain.KeyScoreTable)
	if err != nil {
		err = fmt.Errorf("unit %s: %w", wsu.name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return state, err
	}

	winners, err := SelectWinners(table)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return state, err
	}

	span.SetAttributes(
		attribute.Int("winners.contested", winners.Contested()),
		attribute.Int("winners.undecided", winners.Undecided()),
	)
	return domain.With(state, domain.KeyWinners, winners), nil
}

// Validate always succeeds; the unit has no configuration.
func (wsu *WinnerSelectorUnit) Validate() error { return nil }

// SelectWinners computes the winner set of every row of the table.
// For each node, the winners are all candidates whose score equals the
// row maximum, unless that maximum is zero, in which case the set is
// empty. Winners are listed in column order. The result depends only on
// the table contents.
//
// Returns EmptyTableError when the table has no rows or no columns.
func SelectWinners(table domain.ScoreTable) (domain.WinnerAssignment, error) {
	if table.Rows() == 0 || table.Columns() == 0 {
		return domain.WinnerAssignment{}, &domain.EmptyTableError{
			Rows:    table.Rows(),
			Columns: table.Columns(),
		}
	}

	candidates := table.Candidates()
	winners := make([][]string, table.Rows())

	for row := range winners {
		scores := table.Row(row)
		best := slices.Max(scores)

		set := make([]string, 0, 1)
		if best > 0 {
			for col, s := range scores {
				if s == best {
					set = append(set, candidates[col])
				}
			}
		}
		winners[row] = set
	}

	return domain.NewWinnerAssignment(table.Nodes(), candidates, winners), nil
}
