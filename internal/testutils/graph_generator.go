// Package testutils provides utilities for testing, including fixtures,
// seeded graph generators, and recording collaborators. The generators also
// back "ballot generate". None of this is public API.
package testutils

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/ahrav/go-ballot/internal/domain"
)

// PathGraph returns the three-node path 1-2-3.
func PathGraph() *domain.Graph {
	g, err := domain.NewGraph(
		[]domain.NodeID{"1", "2", "3"},
		[]domain.Edge{{From: "1", To: "2"}, {From: "2", To: "3"}},
	)
	if err != nil {
		panic(fmt.Sprintf("testutils: path graph: %v", err))
	}
	return g
}

// PathScenario returns the two candidates scored over PathGraph in the
// reference scenario: A selects {1, 2}, B selects {2, 3}. Expected scores are
// A = [2 3 0] and B = [0 3 2]; node 2 is a tie.
func PathScenario(g *domain.Graph) domain.CandidateSet {
	cs, err := domain.NewCandidateSet(
		domain.Candidate{Name: "A", Status: domain.NewStatusMatrix(map[domain.NodeID]domain.Status{
			"1": domain.StatusSelected, "2": domain.StatusSelected, "3": domain.StatusUnselected,
		})},
		domain.Candidate{Name: "B", Status: domain.NewStatusMatrix(map[domain.NodeID]domain.Status{
			"1": domain.StatusUnselected, "2": domain.StatusSelected, "3": domain.StatusSelected,
		})},
	)
	if err != nil {
		panic(fmt.Sprintf("testutils: path scenario: %v", err))
	}
	return cs
}

// RandomGraph builds a graph with nodes "1".."nodeCount" and edgeCount
// random endpoint pairs. Self-loops are redrawn and repeated pairs collapse,
// so the graph may hold fewer distinct edges than requested.
// The same seed always yields the same graph.
func RandomGraph(nodeCount, edgeCount int, seed int64) *domain.Graph {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // Reproducible fixtures.

	nodes := make([]domain.NodeID, nodeCount)
	for i := range nodes {
		nodes[i] = domain.NodeID(strconv.Itoa(i + 1))
	}

	edges := make([]domain.Edge, 0, edgeCount)
	for len(edges) < edgeCount && nodeCount > 1 {
		from, to := rng.Intn(nodeCount), rng.Intn(nodeCount)
		if from == to {
			continue
		}
		edges = append(edges, domain.Edge{From: nodes[from], To: nodes[to]})
	}

	g, err := domain.NewGraph(nodes, edges)
	if err != nil {
		panic(fmt.Sprintf("testutils: random graph: %v", err))
	}
	return g
}

// RandomCandidate selects each node of g with the given probability.
// The matrix is stamped with g's fingerprint.
func RandomCandidate(g *domain.Graph, name string, density float64, seed int64) domain.Candidate {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // Reproducible fixtures.

	values := make(map[domain.NodeID]domain.Status, g.Len())
	for _, n := range g.Nodes() {
		values[n] = domain.StatusUnselected
		if rng.Float64() < density {
			values[n] = domain.StatusSelected
		}
	}
	return domain.Candidate{Name: name, Status: g.Assign(values)}
}

// RandomCandidateSet builds count candidates named "C1".."Ccount" over g.
func RandomCandidateSet(g *domain.Graph, count int, density float64, seed int64) domain.CandidateSet {
	candidates := make([]domain.Candidate, count)
	for i := range candidates {
		candidates[i] = RandomCandidate(g, fmt.Sprintf("C%d", i+1), density, seed+int64(i))
	}
	cs, err := domain.NewCandidateSet(candidates...)
	if err != nil {
		panic(fmt.Sprintf("testutils: random candidate set: %v", err))
	}
	return cs
}
