package domain

import (
	"time"
)

// Result is the outcome of one consensus run. It is what the reporting
// layer consumes: the score table for diagnostics, the per-node winners,
// and the overall candidate ranking. Table and Winners share the same node
// order so they can be joined back onto node metadata.
type Result struct {
	// RunID uniquely identifies this run (a UUID).
	RunID string `json:"run_id"`

	// GraphFingerprint identifies the graph the run scored.
	GraphFingerprint string `json:"graph_fingerprint"`

	// Table holds every candidate's support score per node.
	Table ScoreTable `json:"-"`

	// Winners holds the per-node winner sets.
	Winners WinnerAssignment `json:"-"`

	// Ranking orders candidates by nodes won.
	Ranking []Tally `json:"ranking"`

	// Timestamp records when the run finished.
	Timestamp time.Time `json:"timestamp"`
}
