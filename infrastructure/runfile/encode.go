package runfile

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
)

// FromRun converts domain values back into a File. Candidates whose
// matrix holds only 0/1 values over exactly the graph's nodes use the
// "selected" shorthand; any other matrix is written as a status map.
func FromRun(g *domain.Graph, candidates domain.CandidateSet) *File {
	nodes := g.Nodes()
	pos := make(map[domain.NodeID]int, len(nodes))
	spec := GraphSpec{Nodes: make([]string, len(nodes))}
	for i, n := range nodes {
		pos[n] = i
		spec.Nodes[i] = string(n)
	}

	// Each undirected edge is emitted once, from its earlier endpoint.
	for i, n := range nodes {
		for _, m := range g.Neighbors(n) {
			if pos[m] > i {
				spec.Edges = append(spec.Edges, []string{string(n), string(m)})
			}
		}
	}

	file := &File{Graph: spec, Candidates: make([]CandidateSpec, 0, candidates.Len())}
	for _, c := range candidates.Candidates() {
		file.Candidates = append(file.Candidates, candidateSpec(g, c))
	}
	return file
}

func candidateSpec(g *domain.Graph, c domain.Candidate) CandidateSpec {
	if selected, ok := selectedNodes(g, c.Status); ok {
		return CandidateSpec{Name: c.Name, Selected: selected}
	}

	status := make(map[string]int, c.Status.Len())
	for _, n := range c.Status.Nodes() {
		s, _ := c.Status.Status(n)
		status[string(n)] = int(s)
	}
	return CandidateSpec{Name: c.Name, Status: status}
}

// selectedNodes lists the selected nodes in graph order when m is a
// well-formed assignment over g with at least one selection. An empty
// list would be dropped by omitempty, so it is reported as not ok.
func selectedNodes(g *domain.Graph, m domain.StatusMatrix) ([]string, bool) {
	if m.Len() != g.Len() {
		return nil, false
	}
	var selected []string
	for _, n := range g.Nodes() {
		s, ok := m.Status(n)
		if !ok || !s.Valid() {
			return nil, false
		}
		if s == domain.StatusSelected {
			selected = append(selected, string(n))
		}
	}
	return selected, len(selected) > 0
}

// Write encodes file as YAML.
func Write(w io.Writer, file *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode run file: %w", err)
	}
	return enc.Close()
}
