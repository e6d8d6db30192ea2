package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Pipeline = (*Pipeline)(nil)

// Pipeline is a sequential execution container that runs units in strict
// order, where each unit's output State becomes the input of the next.
type Pipeline struct {
	// id identifies the pipeline in error messages.
	id string
	// units holds the stages in execution order.
	units []ports.Unit
	// names tracks unit names for O(1) duplicate detection.
	names map[string]struct{}
	// mu guards units and names against concurrent Add and Execute.
	mu sync.RWMutex
}

// NewPipeline creates an empty pipeline with the given identifier.
func NewPipeline(id string) *Pipeline {
	return &Pipeline{
		id:    id,
		units: make([]ports.Unit, 0),
		names: make(map[string]struct{}),
	}
}

// Execute runs every unit in order, passing each unit's output State to the
// next. Cancellation is checked between units. On failure the input State
// is returned unchanged together with an error naming the failing unit; the
// unit's error stays reachable through errors.As and errors.Is.
func (p *Pipeline) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	p.mu.RLock()
	units := make([]ports.Unit, len(p.units))
	copy(units, p.units)
	p.mu.RUnlock()

	current := state
	for _, unit := range units {
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		default:
		}

		next, err := unit.Execute(ctx, current)
		if err != nil {
			return state, fmt.Errorf("pipeline %s: execution failed at %s: %w", p.id, unit.Name(), err)
		}
		current = next
	}

	return current, nil
}

// ID returns the pipeline identifier.
func (p *Pipeline) ID() string { return p.id }

// Add appends a unit to the end of the execution sequence.
// Add returns an error if the unit is nil, fails validation, or shares a
// name with a unit already in the pipeline. Add is safe for concurrent use
// with Execute.
func (p *Pipeline) Add(unit ports.Unit) error {
	if unit == nil {
		return errors.New("cannot add nil unit to pipeline")
	}
	if err := unit.Validate(); err != nil {
		return fmt.Errorf("unit %s is not ready: %w", unit.Name(), err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	name := unit.Name()
	if _, exists := p.names[name]; exists {
		return fmt.Errorf("unit with name %s already exists in pipeline %s", name, p.id)
	}

	p.units = append(p.units, unit)
	p.names[name] = struct{}{}
	return nil
}

// Units returns a copy of the ordered unit list.
func (p *Pipeline) Units() []ports.Unit {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]ports.Unit, len(p.units))
	copy(out, p.units)
	return out
}
