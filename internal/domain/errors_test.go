package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsensusErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "missing nodes",
			err:     &DomainMismatchError{Candidate: "A", Missing: []NodeID{"3"}},
			wantMsg: "status domain mismatch: candidate=A, missing=[3]",
		},
		{
			name:    "missing and extra nodes",
			err:     &DomainMismatchError{Candidate: "B", Missing: []NodeID{"1", "2"}, Extra: []NodeID{"x"}},
			wantMsg: "status domain mismatch: candidate=B, missing=[1 2], extra=[x]",
		},
		{
			name:    "inconsistent graph",
			err:     &InconsistentGraphError{Candidate: "A", Expected: "0123456789abcdef", Actual: ""},
			wantMsg: "inconsistent graph: candidate=A, expected=0123456789ab, actual=<none>",
		},
		{
			name:    "empty table",
			err:     &EmptyTableError{Rows: 3},
			wantMsg: "empty score table: rows=3, columns=0",
		},
		{
			name:    "invalid status",
			err:     &InvalidStatusValueError{Candidate: "A", Node: "7", Value: 2},
			wantMsg: "invalid status value: candidate=A, node=7, value=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("EngineConfig")
		err.AddError("max_concurrency must be at least 1")

		assert.True(t, err.HasErrors())
		assert.Equal(t, "validation error for EngineConfig: max_concurrency must be at least 1", err.Error())
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("RunFile")
		err.AddError("first")
		err.AddError("second")

		assert.Equal(t, "validation errors for RunFile: [first second]", err.Error())
	})

	t.Run("no errors", func(t *testing.T) {
		assert.False(t, NewValidationError("x").HasErrors())
	})
}
