// Package runfile decodes run descriptions (a graph plus candidate
// assignments) from YAML or JSON into domain values.
//
// A run file looks like:
//
//	graph:
//	  nodes: ["1", "2", "3"]
//	  edges: [["1", "2"], ["2", "3"]]
//	candidates:
//	  - name: A
//	    status: {"1": 1, "2": 1, "3": 0}
//	  - name: B
//	    selected: ["2", "3"]
//
// "selected" is shorthand for a status map that marks the listed nodes 1
// and every other node 0.
package runfile

import (
	"github.com/ahrav/go-ballot/internal/domain"
)

// File is the decoded form of a run file.
type File struct {
	// Graph describes the node set and undirected edges.
	Graph GraphSpec `yaml:"graph" json:"graph" validate:"required"`
	// Candidates lists the competing assignments in column order.
	Candidates []CandidateSpec `yaml:"candidates" json:"candidates" validate:"required,min=1,dive"`
}

// GraphSpec is the serialized graph.
type GraphSpec struct {
	// Nodes fixes both the node set and the row order.
	Nodes []string `yaml:"nodes" json:"nodes" validate:"required,min=1,dive,required"`
	// Edges holds endpoint pairs.
	Edges [][]string `yaml:"edges" json:"edges" validate:"dive,len=2,dive,required"`
}

// CandidateSpec is one serialized candidate. Exactly one of Status and
// Selected must be present.
type CandidateSpec struct {
	Name     string         `yaml:"name" json:"name" validate:"required,max=255"`
	Status   map[string]int `yaml:"status,omitempty" json:"status,omitempty"`
	Selected []string       `yaml:"selected,omitempty" json:"selected,omitempty" validate:"omitempty,dive,required"`
}

// Run is a loaded, immutable run input.
type Run struct {
	Graph      *domain.Graph
	Candidates domain.CandidateSet
}
