package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// NodeID identifies a node of the graph under consensus.
type NodeID string

// Edge is an undirected connection between two nodes.
type Edge struct {
	From NodeID `json:"from" yaml:"from"`
	To   NodeID `json:"to" yaml:"to"`
}

// Neighborhood is the contract an external graph model must satisfy to be
// scored. Nodes must return the same order on every call.
type Neighborhood interface {
	// Nodes enumerates every node in a stable order.
	Nodes() []NodeID

	// Neighbors returns the nodes adjacent to n.
	Neighbors(n NodeID) []NodeID
}

var _ Neighborhood = (*Graph)(nil)

// Graph is an immutable undirected graph with a fixed node order.
// The node order given at construction indexes every ScoreTable and
// WinnerAssignment row produced from this graph.
// Graph is safe for concurrent use because nothing mutates it after
// construction.
type Graph struct {
	// order is the fixed node enumeration.
	order []NodeID
	// index maps a node to its position in order.
	index map[NodeID]int
	// adjacency holds distinct, sorted neighbors keyed by node position.
	adjacency [][]NodeID
	// fingerprint identifies this graph and node order.
	fingerprint string
}

// NewGraph builds a Graph from a node enumeration and an edge list.
// Duplicate edges collapse to a single neighbor relation. Duplicate nodes,
// self-loops, and edges naming unknown nodes are rejected with ErrInvalidGraph.
func NewGraph(nodes []NodeID, edges []Edge) (*Graph, error) {
	g := &Graph{
		order:     slices.Clone(nodes),
		index:     make(map[NodeID]int, len(nodes)),
		adjacency: make([][]NodeID, len(nodes)),
	}

	for i, n := range g.order {
		if _, dup := g.index[n]; dup {
			return nil, fmt.Errorf("%w: duplicate node %q", ErrInvalidGraph, n)
		}
		g.index[n] = i
	}

	for _, e := range edges {
		from, ok := g.index[e.From]
		if !ok {
			return nil, fmt.Errorf("%w: edge %q-%q references unknown node %q", ErrInvalidGraph, e.From, e.To, e.From)
		}
		to, ok := g.index[e.To]
		if !ok {
			return nil, fmt.Errorf("%w: edge %q-%q references unknown node %q", ErrInvalidGraph, e.From, e.To, e.To)
		}
		if from == to {
			return nil, fmt.Errorf("%w: self-loop on node %q", ErrInvalidGraph, e.From)
		}
		g.adjacency[from] = append(g.adjacency[from], e.To)
		g.adjacency[to] = append(g.adjacency[to], e.From)
	}

	for i, nbrs := range g.adjacency {
		slices.Sort(nbrs)
		g.adjacency[i] = slices.Compact(nbrs)
	}

	g.fingerprint = g.computeFingerprint()
	return g, nil
}

// Snapshot copies an external graph model into an immutable Graph.
// Neighbor lists must agree: when m is a neighbor of n, n must be a
// neighbor of m. Neighbor lists are read once per node and the model is
// not retained.
func Snapshot(src Neighborhood) (*Graph, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil graph model", ErrInvalidGraph)
	}
	if g, ok := src.(*Graph); ok {
		if g == nil {
			return nil, fmt.Errorf("%w: nil graph model", ErrInvalidGraph)
		}
		return g, nil
	}

	nodes := src.Nodes()
	lists := make(map[NodeID][]NodeID, len(nodes))
	for _, n := range nodes {
		lists[n] = nil
	}
	for _, n := range nodes {
		nbrs := src.Neighbors(n)
		for _, m := range nbrs {
			if _, ok := lists[m]; !ok {
				return nil, fmt.Errorf("%w: node %q has neighbor %q outside the node set", ErrInvalidGraph, n, m)
			}
		}
		lists[n] = nbrs
	}

	// The relation must be symmetric so that scores agree with the
	// model's own neighbor lists.
	var edges []Edge
	for _, n := range nodes {
		for _, m := range lists[n] {
			if !slices.Contains(lists[m], n) {
				return nil, fmt.Errorf("%w: node %q lists %q as a neighbor but %q does not list %q", ErrInvalidGraph, n, m, m, n)
			}
			edges = append(edges, Edge{From: n, To: m})
		}
	}
	return NewGraph(nodes, edges)
}

// Nodes returns a copy of the fixed node order.
func (g *Graph) Nodes() []NodeID { return slices.Clone(g.order) }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// NodeAt returns the node at position i of the fixed order.
func (g *Graph) NodeAt(i int) NodeID { return g.order[i] }

// Has reports whether n belongs to the graph.
func (g *Graph) Has(n NodeID) bool {
	_, ok := g.index[n]
	return ok
}

// Neighbors returns a copy of the distinct neighbors of n, sorted.
// Unknown nodes have no neighbors.
func (g *Graph) Neighbors(n NodeID) []NodeID {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return slices.Clone(g.adjacency[i])
}

// Degree returns the number of distinct neighbors of n.
func (g *Graph) Degree(n NodeID) int {
	i, ok := g.index[n]
	if !ok {
		return 0
	}
	return len(g.adjacency[i])
}

// EdgeCount returns the number of distinct undirected edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, nbrs := range g.adjacency {
		total += len(nbrs)
	}
	return total / 2
}

// Fingerprint identifies the graph's node order and neighbor relation.
// Two graphs with equal fingerprints produce aligned score tables.
func (g *Graph) Fingerprint() string { return g.fingerprint }

// Assign builds a StatusMatrix stamped with this graph's fingerprint, so
// that scoring it against a different graph is detected.
func (g *Graph) Assign(values map[NodeID]Status) StatusMatrix {
	m := NewStatusMatrix(values)
	m.origin = g.fingerprint
	return m
}

// AssignSelected is a shorthand for Assign where every listed node is
// selected and every other graph node is unselected.
func (g *Graph) AssignSelected(selected ...NodeID) StatusMatrix {
	values := make(map[NodeID]Status, len(g.order))
	for _, n := range g.order {
		values[n] = StatusUnselected
	}
	for _, n := range selected {
		values[n] = StatusSelected
	}
	return g.Assign(values)
}

func (g *Graph) computeFingerprint() string {
	h := sha256.New()
	for i, n := range g.order {
		fmt.Fprintf(h, "%d:%q[", i, n)
		for _, m := range g.adjacency[i] {
			fmt.Fprintf(h, "%q,", m)
		}
		h.Write([]byte("]\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
