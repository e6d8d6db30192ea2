package domain

import (
	"slices"
	"sort"
)

// WinnerAssignment maps each node, in graph order, to the set of candidates
// with maximal positive support there. An empty set means no candidate
// offered any evidence for the node. Names inside a set are listed in
// ScoreTable column order; callers should treat them as unordered.
type WinnerAssignment struct {
	nodes      []NodeID
	candidates []string
	winners    [][]string
}

// NewWinnerAssignment creates an assignment from per-row winner sets.
// candidates is the column order of the table the winners came from.
// Inputs are copied.
func NewWinnerAssignment(nodes []NodeID, candidates []string, winners [][]string) WinnerAssignment {
	w := WinnerAssignment{
		nodes:      slices.Clone(nodes),
		candidates: slices.Clone(candidates),
		winners:    make([][]string, len(winners)),
	}
	for i, set := range winners {
		w.winners[i] = slices.Clone(set)
	}
	return w
}

// Len returns the number of nodes.
func (w WinnerAssignment) Len() int { return len(w.nodes) }

// Nodes returns the nodes in graph order.
func (w WinnerAssignment) Nodes() []NodeID { return slices.Clone(w.nodes) }

// At returns the node at position i and its winner set.
func (w WinnerAssignment) At(i int) (NodeID, []string) {
	return w.nodes[i], slices.Clone(w.winners[i])
}

// Winners returns the winner set of node n.
func (w WinnerAssignment) Winners(n NodeID) ([]string, bool) {
	i := slices.Index(w.nodes, n)
	if i < 0 {
		return nil, false
	}
	return slices.Clone(w.winners[i]), true
}

// Contested reports the number of nodes whose winner set holds a tie.
func (w WinnerAssignment) Contested() int {
	n := 0
	for _, set := range w.winners {
		if len(set) > 1 {
			n++
		}
	}
	return n
}

// Undecided reports the number of nodes with an empty winner set.
func (w WinnerAssignment) Undecided() int {
	n := 0
	for _, set := range w.winners {
		if len(set) == 0 {
			n++
		}
	}
	return n
}

// NodesWonBy returns, in graph order, the nodes whose winner set includes
// the candidate.
func (w WinnerAssignment) NodesWonBy(candidate string) []NodeID {
	var out []NodeID
	for i, set := range w.winners {
		if slices.Contains(set, candidate) {
			out = append(out, w.nodes[i])
		}
	}
	return out
}

// Tally holds one candidate's win counts, split into outright and shared
// wins.
type Tally struct {
	Candidate string `json:"candidate"`
	// Outright counts nodes the candidate won alone.
	Outright int `json:"outright"`
	// Shared counts nodes the candidate won in a tie.
	Shared int `json:"shared"`
}

// Total returns outright plus shared wins.
func (t Tally) Total() int { return t.Outright + t.Shared }

// Tally counts the nodes each candidate won. It reports one entry per
// candidate, in column order, including candidates that won nothing.
func (w WinnerAssignment) Tally() []Tally {
	pos := make(map[string]int, len(w.candidates))
	out := make([]Tally, len(w.candidates))
	for i, c := range w.candidates {
		pos[c] = i
		out[i].Candidate = c
	}
	for _, set := range w.winners {
		for _, c := range set {
			i, ok := pos[c]
			if !ok {
				continue
			}
			if len(set) == 1 {
				out[i].Outright++
			} else {
				out[i].Shared++
			}
		}
	}
	return out
}

// Ranking orders candidates by total nodes won, then by outright wins.
// Remaining ties keep column order.
func (w WinnerAssignment) Ranking() []Tally {
	r := w.Tally()
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Total() != r[j].Total() {
			return r[i].Total() > r[j].Total()
		}
		return r[i].Outright > r[j].Outright
	})
	return r
}
