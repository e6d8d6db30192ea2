package units

import (
	"github.com/ahrav/go-ballot/internal/domain"
)

// ScoreOptions controls how a status matrix is interpreted.
type ScoreOptions struct {
	// StrictStatus rejects status values outside {0, 1} with
	// InvalidStatusValueError. When false, any value other than 1 scores
	// zero.
	StrictStatus bool
}

// ScoreCandidate computes one candidate's support score for every node of
// the graph, in graph order. A selected node scores one plus its number of
// distinct neighbors; an unselected node scores zero.
//
// Errors:
//   - InconsistentGraphError if the status matrix was stamped with another graph
//   - DomainMismatchError if the matrix misses graph nodes or covers extra ones
//   - InvalidStatusValueError for values outside {0, 1} under StrictStatus
//
// ScoreCandidate is a pure function and safe for concurrent use.
func ScoreCandidate(g *domain.Graph, c domain.Candidate, opts ScoreOptions) (domain.ScoreVector, error) {
	if g == nil {
		return domain.ScoreVector{}, ErrNilGraph
	}

	if origin := c.Status.Origin(); origin != "" && origin != g.Fingerprint() {
		return domain.ScoreVector{}, &domain.InconsistentGraphError{
			Candidate: c.Name,
			Expected:  g.Fingerprint(),
			Actual:    origin,
		}
	}

	if err := checkDomain(g, c); err != nil {
		return domain.ScoreVector{}, err
	}

	scores := make([]int, g.Len())
	for i := range scores {
		node := g.NodeAt(i)
		status, _ := c.Status.Status(node)

		if opts.StrictStatus && !status.Valid() {
			return domain.ScoreVector{}, &domain.InvalidStatusValueError{
				Candidate: c.Name,
				Node:      node,
				Value:     status,
			}
		}

		if status == domain.StatusSelected {
			scores[i] = 1 + g.Degree(node)
		}
	}

	return domain.NewScoreVector(c.Name, scores), nil
}

// checkDomain verifies that the candidate's matrix covers exactly the
// graph's node set.
func checkDomain(g *domain.Graph, c domain.Candidate) error {
	var missing []domain.NodeID
	for i := 0; i < g.Len(); i++ {
		if _, ok := c.Status.Status(g.NodeAt(i)); !ok {
			missing = append(missing, g.NodeAt(i))
		}
	}

	var extra []domain.NodeID
	if covered := g.Len() - len(missing); c.Status.Len() > covered {
		for _, n := range c.Status.Nodes() {
			if !g.Has(n) {
				extra = append(extra, n)
			}
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return &domain.DomainMismatchError{
		Candidate: c.Name,
		Missing:   missing,
		Extra:     extra,
	}
}
