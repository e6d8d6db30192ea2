// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Unit represents one stage of the consensus pipeline.
// Each Unit reads its inputs from the State and returns a new State with
// its outputs added. Units should be stateless and thread-safe.
type Unit interface {
	// Name returns a unique identifier for this unit.
	// The name is used for logging, tracing, and error context.
	Name() string

	// Execute performs the unit's transformation on the provided State.
	// The original State must not be modified. Errors are returned, never
	// panicked, and a failed Execute must not return a partially updated
	// State.
	//
	// The context parameter allows for cancellation and deadline propagation.
	// Units should respect context cancellation and return promptly.
	//
	// Example:
	//
	//	newState, err := unit.Execute(ctx, state)
	//	if err != nil {
	//	    return nil, fmt.Errorf("unit %s failed: %w", unit.Name(), err)
	//	}
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks if the unit is properly configured and ready for execution.
	// Return nil if validation passes, or an error describing what is invalid.
	Validate() error
}

// Pipeline runs units in strict order, feeding each unit's output State to
// the next.
type Pipeline interface {
	// ID returns the pipeline identifier used in error context.
	ID() string

	// Execute runs every unit in order and returns the final State.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Add appends a unit to the end of the pipeline.
	// Add returns an error for nil units or duplicate names.
	Add(unit Unit) error

	// Units returns the ordered units. The returned slice is a copy.
	Units() []Unit
}
