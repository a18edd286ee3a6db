// Package store defines the persistent store adapter contract (§6.7):
// the typed handle the orchestrator and experiment driver use for scene
// lookup, idempotent run recording, and experiment lifecycle state.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"

	"github.com/2nod/evalrunner/pkg/models"
)

// Adapter is the persistent store adapter contract. Every method takes a
// context so a remote-backed implementation can honor cancellation.
type Adapter interface {
	// ListScenes applies Split/SceneIDs/Tags, then filter.Expr (a
	// boolean expr-lang predicate over sceneId/split/tags) when set.
	ListScenes(ctx context.Context, filter models.SceneFilter) ([]models.Scene, error)

	// AppendRun is idempotent by (RunID, SampleID, Condition): calling it
	// twice with the same key overwrites rather than duplicates.
	AppendRun(ctx context.Context, record models.RunRecord) error

	SetExperimentStatus(ctx context.Context, id string, status models.ExperimentStatus) error
	GetExperiment(ctx context.Context, id string) (models.Experiment, error)
	PutExperiment(ctx context.Context, exp models.Experiment) error

	ListRuns(ctx context.Context, experimentID string) ([]models.RunRecord, error)
	DeleteRunsForExperiment(ctx context.Context, experimentID string) error
}

type runKey struct {
	runID     string
	sampleID  string
	condition models.Condition
}

// MemoryAdapter is a trivial in-process reference implementation of
// Adapter, sufficient for tests and for run-one / single-machine use.
type MemoryAdapter struct {
	mu          sync.Mutex
	scenes      []models.Scene
	runs        map[runKey]models.RunRecord
	runOrder    []runKey
	experiments map[string]models.Experiment
}

// NewMemoryAdapter builds a MemoryAdapter seeded with scenes.
func NewMemoryAdapter(scenes []models.Scene) *MemoryAdapter {
	return &MemoryAdapter{
		scenes:      scenes,
		runs:        make(map[runKey]models.RunRecord),
		experiments: make(map[string]models.Experiment),
	}
}

func (m *MemoryAdapter) ListScenes(_ context.Context, filter models.SceneFilter) ([]models.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tagSet := make(map[string]bool, len(filter.Tags))
	for _, t := range filter.Tags {
		tagSet[t] = true
	}
	idSet := make(map[string]bool, len(filter.SceneIDs))
	for _, id := range filter.SceneIDs {
		idSet[id] = true
	}

	var out []models.Scene
	for _, s := range m.scenes {
		if filter.Split != "" && s.Split != filter.Split {
			continue
		}
		if len(idSet) > 0 && !idSet[s.SceneID] {
			continue
		}
		if len(tagSet) > 0 && !hasAnyTag(s.Tags, tagSet) {
			continue
		}
		if filter.Expr != "" {
			matched, err := evalSceneExpr(filter.Expr, s)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func hasAnyTag(tags []string, want map[string]bool) bool {
	for _, t := range tags {
		if want[t] {
			return true
		}
	}
	return false
}

// evalSceneExpr compiles and runs a boolean expr-lang predicate against a
// scene's sceneId/split/tags. The predicate is compiled anew for every
// scene a ListScenes call examines; compiled programs are not cached.
func evalSceneExpr(predicate string, s models.Scene) (bool, error) {
	env := map[string]any{
		"sceneId": s.SceneID,
		"split":   s.Split,
		"tags":    s.Tags,
	}
	program, err := expr.Compile(predicate, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, &models.ConfigError{Err: fmt.Errorf("sceneFilter.expr: %w", err)}
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, &models.ConfigError{Err: fmt.Errorf("sceneFilter.expr: %w", err)}
	}
	matched, ok := result.(bool)
	if !ok {
		return false, &models.ConfigError{Err: fmt.Errorf("sceneFilter.expr: expected boolean result, got %T", result)}
	}
	return matched, nil
}

func (m *MemoryAdapter) AppendRun(_ context.Context, record models.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := runKey{runID: record.RunID, sampleID: record.SampleID, condition: record.Condition}
	if _, exists := m.runs[key]; !exists {
		m.runOrder = append(m.runOrder, key)
	}
	m.runs[key] = record
	return nil
}

func (m *MemoryAdapter) SetExperimentStatus(_ context.Context, id string, status models.ExperimentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.experiments[id]
	if !ok {
		return &models.ValidationError{Field: "experimentId", Message: "unknown experiment: " + id}
	}
	exp.Status = status
	m.experiments[id] = exp
	return nil
}

func (m *MemoryAdapter) GetExperiment(_ context.Context, id string) (models.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.experiments[id]
	if !ok {
		return models.Experiment{}, &models.ValidationError{Field: "experimentId", Message: "unknown experiment: " + id}
	}
	return exp, nil
}

func (m *MemoryAdapter) PutExperiment(_ context.Context, exp models.Experiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experiments[exp.ID] = exp
	return nil
}

func (m *MemoryAdapter) ListRuns(_ context.Context, experimentID string) ([]models.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.RunRecord
	for _, key := range m.runOrder {
		if key.runID == experimentID {
			out = append(out, m.runs[key])
		}
	}
	return out, nil
}

func (m *MemoryAdapter) DeleteRunsForExperiment(_ context.Context, experimentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	remaining := m.runOrder[:0]
	for _, key := range m.runOrder {
		if key.runID == experimentID {
			delete(m.runs, key)
			continue
		}
		remaining = append(remaining, key)
	}
	m.runOrder = remaining
	return nil
}
