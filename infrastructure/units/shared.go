// Package units provides the consensus pipeline stages that implement the
// ports.Unit interface: scoring candidates against a graph and selecting
// per-node winners from the resulting score table.
package units

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Common errors returned by consensus units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrNilGraph is returned when a candidate is scored without a graph.
	ErrNilGraph = errors.New("graph cannot be nil")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
