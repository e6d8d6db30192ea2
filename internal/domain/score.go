package domain

import (
	"fmt"
	"slices"
)

// ScoreVector holds one candidate's support score for every node, aligned
// to the graph's node order.
type ScoreVector struct {
	candidate string
	scores    []int
}

// NewScoreVector creates a ScoreVector for the named candidate.
// The scores slice is copied.
func NewScoreVector(candidate string, scores []int) ScoreVector {
	return ScoreVector{candidate: candidate, scores: slices.Clone(scores)}
}

// Candidate returns the name of the scored candidate.
func (v ScoreVector) Candidate() string { return v.candidate }

// Len returns the number of scored nodes.
func (v ScoreVector) Len() int { return len(v.scores) }

// At returns the score of the node at position i.
func (v ScoreVector) At(i int) int { return v.scores[i] }

// Values returns a copy of the scores in node order.
func (v ScoreVector) Values() []int { return slices.Clone(v.scores) }

// ScoreTable is the node by candidate matrix of support scores. Rows follow
// the graph's node order and columns follow the CandidateSet order.
type ScoreTable struct {
	nodes      []NodeID
	candidates []string
	// cells is row-major: cells[row][column].
	cells [][]int
}

// NewScoreTable assembles a table from per-candidate vectors. Every vector
// must cover exactly len(nodes) rows; columns take the vectors' order.
func NewScoreTable(nodes []NodeID, vectors []ScoreVector) (ScoreTable, error) {
	t := ScoreTable{
		nodes:      slices.Clone(nodes),
		candidates: make([]string, len(vectors)),
		cells:      make([][]int, len(nodes)),
	}
	for row := range t.cells {
		t.cells[row] = make([]int, len(vectors))
	}

	for col, v := range vectors {
		if v.Len() != len(nodes) {
			return ScoreTable{}, fmt.Errorf("%w: candidate %q has %d scores for %d nodes",
				ErrMisalignedScores, v.candidate, v.Len(), len(nodes))
		}
		t.candidates[col] = v.candidate
		for row, s := range v.scores {
			t.cells[row][col] = s
		}
	}
	return t, nil
}

// Rows returns the number of nodes in the table.
func (t ScoreTable) Rows() int { return len(t.nodes) }

// Columns returns the number of candidates in the table.
func (t ScoreTable) Columns() int { return len(t.candidates) }

// Nodes returns the row labels in node order.
func (t ScoreTable) Nodes() []NodeID { return slices.Clone(t.nodes) }

// Candidates returns the column labels in candidate order.
func (t ScoreTable) Candidates() []string { return slices.Clone(t.candidates) }

// Row returns a copy of the scores for the node at position row.
func (t ScoreTable) Row(row int) []int { return slices.Clone(t.cells[row]) }

// Column returns the scores of the named candidate in node order.
func (t ScoreTable) Column(candidate string) ([]int, bool) {
	col := slices.Index(t.candidates, candidate)
	if col < 0 {
		return nil, false
	}
	out := make([]int, len(t.cells))
	for row := range t.cells {
		out[row] = t.cells[row][col]
	}
	return out, true
}

// Score returns the score of a candidate at a node.
func (t ScoreTable) Score(node NodeID, candidate string) (int, bool) {
	row := slices.Index(t.nodes, node)
	col := slices.Index(t.candidates, candidate)
	if row < 0 || col < 0 {
		return 0, false
	}
	return t.cells[row][col], true
}
