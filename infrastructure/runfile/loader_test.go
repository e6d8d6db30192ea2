package runfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/domain"
)

const pathRunYAML = `
graph:
  nodes: ["1", "2", "3"]
  edges: [["1", "2"], ["2", "3"]]
candidates:
  - name: A
    status: {"1": 1, "2": 1, "3": 0}
  - name: B
    selected: ["2", "3"]
`

const pathRunJSON = `{
  "graph": {"nodes": ["1", "2", "3"], "edges": [["1", "2"], ["2", "3"]]},
  "candidates": [
    {"name": "A", "status": {"1": 1, "2": 1, "3": 0}},
    {"name": "B", "selected": ["2", "3"]}
  ]
}`

func TestLoader_Load(t *testing.T) {
	for name, input := range map[string]string{"yaml": pathRunYAML, "json": pathRunJSON} {
		t.Run(name, func(t *testing.T) {
			run, err := NewLoader().Load(context.Background(), strings.NewReader(input))
			require.NoError(t, err)

			assert.Equal(t, []domain.NodeID{"1", "2", "3"}, run.Graph.Nodes())
			assert.Equal(t, []domain.NodeID{"1", "3"}, run.Graph.Neighbors("2"))
			assert.Equal(t, []string{"A", "B"}, run.Candidates.Names())

			a := run.Candidates.At(0).Status
			b := run.Candidates.At(1).Status
			assert.Equal(t, run.Graph.Fingerprint(), a.Origin())
			assert.Equal(t, run.Graph.Fingerprint(), b.Origin())

			for node, want := range map[domain.NodeID]domain.Status{"1": 0, "2": 1, "3": 1} {
				got, ok := b.Status(node)
				require.True(t, ok)
				assert.Equal(t, want, got, "B at node %s", node)
			}
			s, ok := a.Status("3")
			require.True(t, ok)
			assert.Equal(t, domain.StatusUnselected, s)
		})
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		verifyErr func(t *testing.T, err error)
	}{
		{
			name:  "empty input",
			input: "",
			verifyErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decode run file")
			},
		},
		{
			name: "unknown field",
			input: `
graph:
  nodes: ["1"]
  directed: true
candidates:
  - name: A
    selected: []
`,
			verifyErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "directed")
			},
		},
		{
			name: "no candidates",
			input: `
graph:
  nodes: ["1"]
candidates: []
`,
			verifyErr: func(t *testing.T, err error) {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
				assert.Contains(t, verr.Errors[0], "Candidates: min=1")
			},
		},
		{
			name: "edge with three endpoints",
			input: `
graph:
  nodes: ["1", "2", "3"]
  edges: [["1", "2", "3"]]
candidates:
  - name: A
    selected: ["1"]
`,
			verifyErr: func(t *testing.T, err error) {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, err.Error(), "len=2")
			},
		},
		{
			name: "candidate with neither status nor selected",
			input: `
graph:
  nodes: ["1"]
candidates:
  - name: A
`,
			verifyErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "one of status or selected is required")
			},
		},
		{
			name: "candidate with both forms",
			input: `
graph:
  nodes: ["1"]
candidates:
  - name: A
    status: {"1": 1}
    selected: ["1"]
`,
			verifyErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "mutually exclusive")
			},
		},
		{
			name: "edge to unknown node",
			input: `
graph:
  nodes: ["1", "2"]
  edges: [["1", "9"]]
candidates:
  - name: A
    selected: ["1"]
`,
			verifyErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrInvalidGraph)
			},
		},
		{
			name: "self-loop",
			input: `
graph:
  nodes: ["1", "2"]
  edges: [["1", "1"]]
candidates:
  - name: A
    selected: ["1"]
`,
			verifyErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrInvalidGraph)
			},
		},
		{
			name: "selected node outside the graph",
			input: `
graph:
  nodes: ["1", "2"]
candidates:
  - name: A
    selected: ["7"]
`,
			verifyErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrUnknownNode)
				assert.Contains(t, err.Error(), `candidate "A"`)
			},
		},
		{
			name: "duplicate candidate names",
			input: `
graph:
  nodes: ["1"]
candidates:
  - name: A
    selected: ["1"]
  - name: A
    selected: []
`,
			verifyErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrDuplicateCandidate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := NewLoader().Load(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, run)
			tt.verifyErr(t, err)
		})
	}
}

// TestLoader_StatusMapGapsSurfaceAtScoring verifies that an incomplete
// status map loads successfully; the gap is the scorer's to report.
func TestLoader_StatusMapGapsSurfaceAtScoring(t *testing.T) {
	run, err := NewLoader().Load(context.Background(), strings.NewReader(`
graph:
  nodes: ["1", "2", "3"]
candidates:
  - name: A
    status: {"1": 1, "2": 1}
`))
	require.NoError(t, err)
	assert.Equal(t, 2, run.Candidates.At(0).Status.Len())
}

func TestLoader_Cache(t *testing.T) {
	loader := NewLoader()

	first, err := loader.Load(context.Background(), strings.NewReader(pathRunYAML))
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), strings.NewReader(pathRunYAML))
	require.NoError(t, err)
	assert.Same(t, first, second, "identical bytes hit the cache")

	loader.ClearCache()
	third, err := loader.Load(context.Background(), strings.NewReader(pathRunYAML))
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, first.Graph.Fingerprint(), third.Graph.Fingerprint())
}

func TestLoader_ConcurrentLoads(t *testing.T) {
	loader := NewLoader()

	var wg sync.WaitGroup
	runs := make([]*Run, 16)
	errs := make([]error, 16)
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runs[i], errs[i] = loader.Load(context.Background(), strings.NewReader(pathRunYAML))
		}()
	}
	wg.Wait()

	for i := range runs {
		require.NoError(t, errs[i])
		assert.Same(t, runs[0], runs[i])
	}
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pathRunYAML), 0o600))

	loader := NewLoader()
	run, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Candidates.Len())

	_, err = loader.LoadFile(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader().Load(ctx, strings.NewReader(pathRunYAML))
	assert.ErrorIs(t, err, context.Canceled)
}
