package runfile

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/testutils"
)

func TestFromRun_PathScenario(t *testing.T) {
	g := testutils.PathGraph()
	file := FromRun(g, testutils.PathScenario(g))

	assert.Equal(t, []string{"1", "2", "3"}, file.Graph.Nodes)
	assert.Equal(t, [][]string{{"1", "2"}, {"2", "3"}}, file.Graph.Edges)
	require.Len(t, file.Candidates, 2)
	assert.Equal(t, CandidateSpec{Name: "A", Selected: []string{"1", "2"}}, file.Candidates[0])
	assert.Equal(t, CandidateSpec{Name: "B", Selected: []string{"2", "3"}}, file.Candidates[1])
}

func TestFromRun_StatusMapFallback(t *testing.T) {
	g := testutils.PathGraph()
	cs, err := domain.NewCandidateSet(
		domain.Candidate{Name: "none", Status: g.AssignSelected()},
		domain.Candidate{Name: "odd", Status: g.Assign(map[domain.NodeID]domain.Status{"1": 2, "2": 0, "3": 1})},
		domain.Candidate{Name: "partial", Status: g.Assign(map[domain.NodeID]domain.Status{"1": 1})},
	)
	require.NoError(t, err)

	file := FromRun(g, cs)

	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0}, file.Candidates[0].Status)
	assert.Equal(t, map[string]int{"1": 2, "2": 0, "3": 1}, file.Candidates[1].Status)
	assert.Equal(t, map[string]int{"1": 1}, file.Candidates[2].Status)
	for _, c := range file.Candidates {
		assert.Nil(t, c.Selected, c.Name)
	}
}

// TestWrite_Reload checks that a written run file loads back into the
// same graph and assignments.
func TestWrite_Reload(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := testutils.RandomGraph(59, 100, seed)
		cs := testutils.RandomCandidateSet(g, 3, 0.4, seed)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FromRun(g, cs)))

		run, err := NewLoader().Load(context.Background(), &buf)
		require.NoError(t, err, "seed %d", seed)

		assert.Equal(t, g.Fingerprint(), run.Graph.Fingerprint(), "seed %d", seed)
		require.Equal(t, cs.Names(), run.Candidates.Names())
		for i := range cs.Len() {
			want, got := cs.At(i).Status, run.Candidates.At(i).Status
			for _, n := range g.Nodes() {
				ws, _ := want.Status(n)
				gs, ok := got.Status(n)
				require.True(t, ok)
				assert.Equal(t, ws, gs, "seed %d candidate %s node %s", seed, cs.At(i).Name, n)
			}
		}
	}
}
