package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/models"
)

func TestListScenesFiltersBySplitAndTags(t *testing.T) {
	scenes := []models.Scene{
		{SceneID: "s1", Split: "train", Tags: []string{"emotional"}},
		{SceneID: "s2", Split: "test", Tags: []string{"action"}},
		{SceneID: "s3", Split: "train", Tags: []string{"action"}},
	}
	adapter := NewMemoryAdapter(scenes)
	ctx := context.Background()

	out, err := adapter.ListScenes(ctx, models.SceneFilter{Split: "train"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = adapter.ListScenes(ctx, models.SceneFilter{Split: "train", Tags: []string{"action"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "s3", out[0].SceneID)
}

func TestListScenesAppliesExprPredicate(t *testing.T) {
	scenes := []models.Scene{
		{SceneID: "s1", Split: "train", Tags: []string{"emotional"}},
		{SceneID: "s2", Split: "test", Tags: []string{"action", "emotional"}},
		{SceneID: "s3", Split: "train", Tags: []string{"action"}},
	}
	adapter := NewMemoryAdapter(scenes)
	ctx := context.Background()

	out, err := adapter.ListScenes(ctx, models.SceneFilter{Expr: `split == "train" && len(tags) > 0`})
	require.NoError(t, err)
	require.Len(t, out, 2)

	out, err = adapter.ListScenes(ctx, models.SceneFilter{Expr: `"emotional" in tags`})
	require.NoError(t, err)
	require.Len(t, out, 2)

	_, err = adapter.ListScenes(ctx, models.SceneFilter{Expr: `not a valid expr (`})
	assert.Error(t, err)
}

func TestAppendRunIsIdempotentByKey(t *testing.T) {
	adapter := NewMemoryAdapter(nil)
	ctx := context.Background()

	rec := models.RunRecord{RunID: "run-1", SampleID: "sample-1", Condition: models.ConditionA0, Final: "first"}
	require.NoError(t, adapter.AppendRun(ctx, rec))

	rec.Final = "second"
	require.NoError(t, adapter.AppendRun(ctx, rec))

	runs, err := adapter.ListRuns(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "second", runs[0].Final)
}

func TestExperimentLifecycle(t *testing.T) {
	adapter := NewMemoryAdapter(nil)
	ctx := context.Background()

	exp := models.Experiment{ID: "exp-1", Status: models.ExperimentDraft}
	require.NoError(t, adapter.PutExperiment(ctx, exp))

	require.NoError(t, adapter.SetExperimentStatus(ctx, "exp-1", models.ExperimentRunning))
	got, err := adapter.GetExperiment(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExperimentRunning, got.Status)

	_, err = adapter.GetExperiment(ctx, "missing")
	assert.Error(t, err)
}

func TestDeleteRunsForExperimentRemovesOnlyMatching(t *testing.T) {
	adapter := NewMemoryAdapter(nil)
	ctx := context.Background()

	require.NoError(t, adapter.AppendRun(ctx, models.RunRecord{RunID: "run-1", SampleID: "a", Condition: models.ConditionA0}))
	require.NoError(t, adapter.AppendRun(ctx, models.RunRecord{RunID: "run-2", SampleID: "b", Condition: models.ConditionA0}))

	require.NoError(t, adapter.DeleteRunsForExperiment(ctx, "run-1"))

	runs1, _ := adapter.ListRuns(ctx, "run-1")
	runs2, _ := adapter.ListRuns(ctx, "run-2")
	assert.Empty(t, runs1)
	assert.Len(t, runs2, 1)
}
