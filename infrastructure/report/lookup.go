package report

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// foldCaser is a package-level Unicode case folder for performance.
var foldCaser = cases.Fold()

// suggestThreshold is the minimum similarity for a name to be offered as
// a suggestion.
const suggestThreshold = 0.5

// ErrUnknownCandidate is wrapped by UnknownCandidateError.
var ErrUnknownCandidate = errors.New("unknown candidate")

// UnknownCandidateError reports a lookup that matched no candidate.
// Suggestion holds the closest known name, or "" when nothing is close.
type UnknownCandidateError struct {
	Name       string
	Suggestion string
}

func (e *UnknownCandidateError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("unknown candidate %q", e.Name)
	}
	return fmt.Sprintf("unknown candidate %q (did you mean %q?)", e.Name, e.Suggestion)
}

func (e *UnknownCandidateError) Unwrap() error { return ErrUnknownCandidate }

// ResolveCandidate finds query among names. An exact match wins; otherwise
// a unique case-folded match is accepted. A miss returns
// *UnknownCandidateError carrying the most similar name.
func ResolveCandidate(names []string, query string) (string, error) {
	for _, n := range names {
		if n == query {
			return n, nil
		}
	}

	folded := foldCaser.String(query)
	match := ""
	for _, n := range names {
		if foldCaser.String(n) != folded {
			continue
		}
		if match != "" {
			// Ambiguous under folding; only an exact match can pick one.
			return "", &UnknownCandidateError{Name: query}
		}
		match = n
	}
	if match != "" {
		return match, nil
	}

	return "", &UnknownCandidateError{Name: query, Suggestion: closest(names, folded)}
}

// closest returns the name most similar to the folded query, preferring
// earlier names on ties.
func closest(names []string, folded string) string {
	best, bestScore := "", 0.0
	for _, n := range names {
		score := similarity(foldCaser.String(n), folded)
		if score >= suggestThreshold && score > bestScore {
			best, bestScore = n, score
		}
	}
	return best
}

// similarity is 1 - distance/maxRunes, in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
