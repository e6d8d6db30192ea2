package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCandidate(t *testing.T) {
	names := []string{"Alpha", "Bravo", "Charlie"}

	tests := []struct {
		name           string
		names          []string
		query          string
		want           string
		wantSuggestion string
		wantErr        bool
	}{
		{name: "exact", names: names, query: "Bravo", want: "Bravo"},
		{name: "case folded", names: names, query: "ALPHA", want: "Alpha"},
		{name: "typo suggests", names: names, query: "Bravp", wantErr: true, wantSuggestion: "Bravo"},
		{name: "typo ignores case", names: names, query: "alpah", wantErr: true, wantSuggestion: "Alpha"},
		{name: "nothing close", names: names, query: "Zulu", wantErr: true},
		{name: "empty set", names: nil, query: "A", wantErr: true},
		{
			name:    "ambiguous fold",
			names:   []string{"abc", "ABC"},
			query:   "Abc",
			wantErr: true,
		},
		{name: "exact beats fold", names: []string{"abc", "ABC"}, query: "ABC", want: "ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCandidate(tt.names, tt.query)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownCandidate)
			var uerr *UnknownCandidateError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tt.query, uerr.Name)
			assert.Equal(t, tt.wantSuggestion, uerr.Suggestion)
			if tt.wantSuggestion != "" {
				assert.Contains(t, err.Error(), "did you mean")
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, similarity("café", "café"), 1e-9)
	assert.InDelta(t, 0.75, similarity("café", "cafe"), 1e-9)
	assert.InDelta(t, 0.0, similarity("ab", "cd"), 1e-9)
}
