// Package domain contains pure, dependency-free domain models and types
// for the consensus engine.
package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Key represents a type-safe generic key for accessing values in State.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating the need for runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
// This function is provided for creating keys outside of the domain package.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key's string name.
func (k Key[T]) Name() string { return k.name }

// Predefined state keys used by the consensus pipeline.
var (
	// KeyGraph stores the graph under consensus.
	KeyGraph = Key[*Graph]{"graph"}

	// KeyCandidates stores the ordered candidate set.
	KeyCandidates = Key[CandidateSet]{"candidates"}

	// KeyScoreTable stores the assembled node by candidate score table.
	KeyScoreTable = Key[ScoreTable]{"score_table"}

	// KeyWinners stores the per-node winner assignment.
	KeyWinners = Key[WinnerAssignment]{"winners"}

	// KeyRunID stores the identifier of the current run.
	KeyRunID = Key[string]{"execution.run_id"}
)

// State is an immutable collection of run data that flows through the
// pipeline. It uses copy-on-write semantics: every value stored is an
// immutable domain type, so a shallow clone of the map is enough to keep
// earlier states untouched. State is the primary data structure for passing
// information between Units.
type State struct {
	// data holds the key-value pairs that make up the state.
	// It is unexported to maintain immutability guarantees.
	data map[string]any
}

// NewState creates a new empty State.
// The returned State is ready to use and can be safely shared across
// goroutines.
func NewState() State {
	return State{
		data: make(map[string]any),
	}
}

// Get retrieves a value from the State with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and contains a value of the correct type.
//
// Example:
//
//	table, ok := Get(state, KeyScoreTable)
//	if !ok {
//	    // handle missing value
//	}
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}
	val, ok := value.(T)
	return val, ok
}

// Require is Get for values a unit cannot run without. It returns a
// StateError wrapping ErrKeyNotFound when the key is absent.
func Require[T any](s State, key Key[T]) (T, error) {
	v, ok := Get(s, key)
	if !ok {
		return v, NewStateError(key.name, "Get", ErrKeyNotFound)
	}
	return v, nil
}

// With creates a new State with the specified key-value pair added or
// updated, leaving the original unchanged.
//
// Example:
//
//	newState := With(state, KeyGraph, graph)
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	if newData == nil {
		newData = make(map[string]any, 1)
	}
	newData[key.name] = value
	return State{data: newData}
}

// Keys returns all keys present in the State, sorted.
func (s State) Keys() []string {
	return slices.Sorted(maps.Keys(s.data))
}

// String returns a string representation of the State for debugging purposes.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.Keys())
}
