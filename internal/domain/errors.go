package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur while building consensus inputs.
var (
	// ErrInvalidState indicates that a State operation received invalid input.
	ErrInvalidState = errors.New("invalid state")

	// ErrKeyNotFound indicates that a requested state key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidGraph indicates a malformed graph: duplicate nodes,
	// self-loops, or edges to unknown nodes.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrUnknownNode indicates a reference to a node outside the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateCandidate indicates two candidates share a name.
	ErrDuplicateCandidate = errors.New("duplicate candidate name")

	// ErrEmptyCandidateName indicates a candidate without a name.
	ErrEmptyCandidateName = errors.New("empty candidate name")

	// ErrMisalignedScores indicates a score vector whose length differs
	// from the node count.
	ErrMisalignedScores = errors.New("score vector does not match node count")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// DomainMismatchError reports a StatusMatrix whose domain differs from the
// graph's node set.
type DomainMismatchError struct {
	// Candidate names the offending candidate.
	Candidate string

	// Missing lists graph nodes the matrix does not cover.
	Missing []NodeID

	// Extra lists covered nodes that are not in the graph.
	Extra []NodeID
}

// Error implements the error interface for DomainMismatchError.
func (e *DomainMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status domain mismatch: candidate=%s", e.Candidate)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ", missing=%s", joinNodes(e.Missing))
	}
	if len(e.Extra) > 0 {
		fmt.Fprintf(&b, ", extra=%s", joinNodes(e.Extra))
	}
	return b.String()
}

// InconsistentGraphError reports a candidate produced on a different graph
// or node order than the one being scored.
type InconsistentGraphError struct {
	Candidate string
	// Expected is the fingerprint of the graph under consensus.
	Expected string
	// Actual is the fingerprint the candidate was stamped with.
	Actual string
}

// Error implements the error interface for InconsistentGraphError.
func (e *InconsistentGraphError) Error() string {
	return fmt.Sprintf("inconsistent graph: candidate=%s, expected=%s, actual=%s",
		e.Candidate, shortFingerprint(e.Expected), shortFingerprint(e.Actual))
}

// EmptyTableError reports winner selection on a table without rows or
// columns.
type EmptyTableError struct {
	Rows    int
	Columns int
}

// Error implements the error interface for EmptyTableError.
func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("empty score table: rows=%d, columns=%d", e.Rows, e.Columns)
}

// InvalidStatusValueError reports a status outside {0, 1}.
type InvalidStatusValueError struct {
	Candidate string
	Node      NodeID
	Value     Status
}

// Error implements the error interface for InvalidStatusValueError.
func (e *InvalidStatusValueError) Error() string {
	return fmt.Sprintf("invalid status value: candidate=%s, node=%s, value=%d", e.Candidate, e.Node, e.Value)
}

// StateError represents an error that occurred during State operations.
// It provides context about which key and operation caused the error.
type StateError struct {
	// Key is the name of the state key involved in the failed operation.
	Key string

	// Operation describes what operation was being performed when the error occurred.
	Operation string

	// Err is the underlying error that caused the operation to fail.
	Err error
}

// Error implements the error interface for StateError.
func (e *StateError) Error() string {
	return fmt.Sprintf("state error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StateError) Unwrap() error { return e.Err }

// NewStateError creates a new StateError with the given details.
func NewStateError(key string, operation string, err error) *StateError {
	return &StateError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap lets errors.Is match ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

func joinNodes(nodes []NodeID) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = string(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	if fp == "" {
		return "<none>"
	}
	return fp
}
