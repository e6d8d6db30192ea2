package runfile

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Loader parses, validates, and builds run files, caching built runs by
// the SHA-256 of their source bytes. Cached runs are immutable and shared.
type Loader struct {
	validator *validator.Validate
	// cache maps source hash to the built run.
	cache   map[string]*Run
	cacheMu sync.RWMutex
	// sf prevents duplicate builds when goroutines load the same bytes.
	sf singleflight.Group
}

// NewLoader creates a loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(),
		cache:     make(map[string]*Run),
	}
}

// LoadFile reads and builds a run file from disk.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Run, error) {
	// Clean the path to prevent directory traversal attacks.
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	return l.load(ctx, data)
}

// Load reads and builds a run file from r.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Run, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	return l.load(ctx, data)
}

// ClearCache drops every cached run.
func (l *Loader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.cache = make(map[string]*Run)
}

func (l *Loader) load(ctx context.Context, data []byte) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	v, err, _ := l.sf.Do(hash, func() (any, error) {
		// Check the cache inside singleflight to close the race between
		// lookup and build.
		if run, ok := l.cached(hash); ok {
			return run, nil
		}

		file, err := Parse(data)
		if err != nil {
			return nil, err
		}
		if err := l.Validate(file); err != nil {
			return nil, err
		}
		run, err := Build(file)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[hash] = run
		l.cacheMu.Unlock()
		return run, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Run), nil
}

func (l *Loader) cached(hash string) (*Run, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	run, ok := l.cache[hash]
	return run, ok
}

// Parse decodes YAML or JSON run file bytes. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode run file: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("decode run file: %w", err)
	}
	return &file, nil
}

// Validate checks struct tags and the cross-field rules tags cannot
// express. Every problem found is collected into one
// *domain.ValidationError.
func (l *Loader) Validate(file *File) error {
	verr := domain.NewValidationError("RunFile")

	if err := l.validator.Struct(file); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("struct validation failed: %w", err)
		}
		for _, fe := range fieldErrs {
			if fe.Param() == "" {
				verr.AddError(fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
			} else {
				verr.AddError(fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			}
		}
	}

	for i, c := range file.Candidates {
		switch {
		case c.Status == nil && c.Selected == nil:
			verr.AddError(fmt.Sprintf("candidates[%d] %q: one of status or selected is required", i, c.Name))
		case c.Status != nil && c.Selected != nil:
			verr.AddError(fmt.Sprintf("candidates[%d] %q: status and selected are mutually exclusive", i, c.Name))
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Build turns a validated File into domain values. Graph errors wrap
// domain.ErrInvalidGraph; a "selected" entry outside the graph wraps
// domain.ErrUnknownNode. Status maps are passed through unchanged, so a
// map that misses or adds nodes surfaces as a DomainMismatchError when
// the run is scored.
func Build(file *File) (*Run, error) {
	nodes := make([]domain.NodeID, len(file.Graph.Nodes))
	for i, n := range file.Graph.Nodes {
		nodes[i] = domain.NodeID(n)
	}

	edges := make([]domain.Edge, 0, len(file.Graph.Edges))
	for i, pair := range file.Graph.Edges {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: edge %d has %d endpoints", domain.ErrInvalidGraph, i, len(pair))
		}
		edges = append(edges, domain.Edge{From: domain.NodeID(pair[0]), To: domain.NodeID(pair[1])})
	}

	g, err := domain.NewGraph(nodes, edges)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(file.Candidates))
	for _, spec := range file.Candidates {
		status, err := candidateStatus(g, spec)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, domain.Candidate{Name: spec.Name, Status: status})
	}

	cs, err := domain.NewCandidateSet(candidates...)
	if err != nil {
		return nil, err
	}
	return &Run{Graph: g, Candidates: cs}, nil
}

func candidateStatus(g *domain.Graph, spec CandidateSpec) (domain.StatusMatrix, error) {
	if spec.Selected != nil {
		selected := make([]domain.NodeID, len(spec.Selected))
		for i, n := range spec.Selected {
			id := domain.NodeID(n)
			if !g.Has(id) {
				return domain.StatusMatrix{}, fmt.Errorf("candidate %q: %w: %q", spec.Name, domain.ErrUnknownNode, n)
			}
			selected[i] = id
		}
		return g.AssignSelected(selected...), nil
	}

	values := make(map[domain.NodeID]domain.Status, len(spec.Status))
	for n, s := range spec.Status {
		values[domain.NodeID(n)] = domain.Status(s)
	}
	return g.Assign(values), nil
}
