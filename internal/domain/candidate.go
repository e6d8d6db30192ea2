package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Status is the label a candidate assigns to a node.
type Status int

// Recognized status values. Anything else is invalid input.
const (
	StatusUnselected Status = 0
	StatusSelected   Status = 1
)

// Valid reports whether s is one of the recognized status values.
func (s Status) Valid() bool { return s == StatusUnselected || s == StatusSelected }

// StatusMatrix maps every graph node to the status one candidate assigned
// it. The zero value is an empty matrix. StatusMatrix copies its input on
// construction and exposes no mutators.
type StatusMatrix struct {
	values map[NodeID]Status
	// origin is the fingerprint of the graph this matrix was produced on.
	// Empty when the producer did not record it.
	origin string
}

// NewStatusMatrix creates a StatusMatrix from a node to status mapping.
// The mapping is copied.
func NewStatusMatrix(values map[NodeID]Status) StatusMatrix {
	return StatusMatrix{values: maps.Clone(values)}
}

// Status returns the status assigned to n and whether n is present.
func (m StatusMatrix) Status(n NodeID) (Status, bool) {
	s, ok := m.values[n]
	return s, ok
}

// Len returns the number of nodes the matrix covers.
func (m StatusMatrix) Len() int { return len(m.values) }

// Origin returns the fingerprint of the graph the matrix was stamped with.
func (m StatusMatrix) Origin() string { return m.origin }

// WithOrigin returns a copy of the matrix stamped with a graph fingerprint.
func (m StatusMatrix) WithOrigin(fingerprint string) StatusMatrix {
	return StatusMatrix{values: m.values, origin: fingerprint}
}

// Nodes returns the covered nodes in sorted order.
func (m StatusMatrix) Nodes() []NodeID {
	return slices.Sorted(maps.Keys(m.values))
}

// Candidate is one proposed partition to be scored.
type Candidate struct {
	// Name identifies the candidate and labels its ScoreTable column.
	Name string

	// Status is the candidate's node assignment.
	Status StatusMatrix
}

// CandidateSet is an ordered, read-only collection of candidates with
// unique names.
type CandidateSet struct {
	candidates []Candidate
}

// NewCandidateSet validates and freezes an ordered list of candidates.
// Names must be non-empty and unique.
func NewCandidateSet(candidates ...Candidate) (CandidateSet, error) {
	seen := make(map[string]int, len(candidates))
	for i, c := range candidates {
		if c.Name == "" {
			return CandidateSet{}, fmt.Errorf("%w: candidate at position %d", ErrEmptyCandidateName, i)
		}
		if prev, dup := seen[c.Name]; dup {
			return CandidateSet{}, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateCandidate, c.Name, prev, i)
		}
		seen[c.Name] = i
	}
	return CandidateSet{candidates: slices.Clone(candidates)}, nil
}

// Len returns the number of candidates.
func (cs CandidateSet) Len() int { return len(cs.candidates) }

// At returns the candidate at position i.
func (cs CandidateSet) At(i int) Candidate { return cs.candidates[i] }

// Candidates returns a copy of the ordered candidates.
func (cs CandidateSet) Candidates() []Candidate { return slices.Clone(cs.candidates) }

// Names returns candidate names in input order.
func (cs CandidateSet) Names() []string {
	names := make([]string, len(cs.candidates))
	for i, c := range cs.candidates {
		names[i] = c.Name
	}
	return names
}
