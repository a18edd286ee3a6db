// Package experiment implements the experiment driver (§4.11): validates
// an Experiment, expands its scene filter into samples, and drives the
// orchestrator asynchronously while managing status transitions.
package experiment

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/orchestrator"
	"github.com/2nod/evalrunner/pkg/store"
)

// Validate checks the preconditions named in §4.11 before a run starts.
func Validate(exp models.Experiment, scenes []models.Scene) error {
	if exp.Status != models.ExperimentDraft {
		return &models.ValidationError{Field: "status", Message: "experiment must be in draft status to start", Status: 409}
	}
	if len(exp.Conditions) == 0 {
		return &models.ValidationError{Field: "conditions", Message: "at least one condition is required", Status: 422}
	}
	for _, c := range exp.Conditions {
		if !models.ValidConditions[c] {
			return &models.ValidationError{Field: "conditions", Message: fmt.Sprintf("unknown condition %q", c), Status: 400}
		}
	}
	if len(scenes) == 0 {
		return &models.ValidationError{Field: "sceneFilter", Message: "scene filter matched no scenes", Status: 422}
	}
	if len(ExpandSamples(scenes)) == 0 {
		return &models.ValidationError{Field: "sceneFilter", Message: "scene filter produced no samples", Status: 422}
	}
	return nil
}

// ExpandSamples derives one Sample per segment of every scene, sorted by
// T within each scene, with context built from the last two preceding
// segments and constraints carrying the scene's target language.
func ExpandSamples(scenes []models.Scene) []models.Sample {
	var samples []models.Sample
	for _, scene := range scenes {
		segments := append([]models.Segment{}, scene.Segments...)
		sort.Slice(segments, func(i, j int) bool { return segments[i].T < segments[j].T })

		constraints := scene.Constraints
		constraints.TargetLang = scene.LangTgt

		for idx, seg := range segments {
			samples = append(samples, models.Sample{
				SampleID:    scene.SceneID + ":" + strconv.Itoa(seg.T),
				SceneID:     scene.SceneID,
				T:           seg.T,
				SourceText:  seg.Text,
				Context:     renderContext(segments, idx),
				Constraints: constraints,
			})
		}
	}
	return samples
}

func renderContext(segments []models.Segment, idx int) string {
	start := idx - 2
	if start < 0 {
		start = 0
	}
	var lines []string
	for _, seg := range segments[start:idx] {
		lines = append(lines, renderContextLine(seg))
	}
	return strings.Join(lines, "\n")
}

func renderContextLine(seg models.Segment) string {
	var b strings.Builder
	if seg.Kind != models.SegmentDialogue {
		b.WriteString("[" + string(seg.Kind) + "] ")
	}
	if seg.Speaker != "" {
		b.WriteString(seg.Speaker + ": ")
	}
	b.WriteString(seg.Text)
	return b.String()
}

// Pairs builds the full (sample, condition) cross product for an
// experiment's conditions over its expanded samples.
func Pairs(exp models.Experiment, samples []models.Sample) []orchestrator.Pair {
	pairs := make([]orchestrator.Pair, 0, len(samples)*len(exp.Conditions))
	for _, s := range samples {
		for _, c := range exp.Conditions {
			pairs = append(pairs, orchestrator.Pair{Sample: s, Condition: c})
		}
	}
	return pairs
}

// Driver runs an experiment to completion against a store adapter,
// transitioning status draft -> running -> completed/failed.
type Driver struct {
	sink         store.Adapter
	orchestrator *orchestrator.Orchestrator
}

// NewDriver builds a Driver over sink and orch.
func NewDriver(sink store.Adapter, orch *orchestrator.Orchestrator) *Driver {
	return &Driver{sink: sink, orchestrator: orch}
}

// Run validates, transitions the experiment to running, launches the
// orchestrator, and on completion sets status to completed or failed.
// It blocks until the run finishes or ctx is cancelled.
func (d *Driver) Run(ctx context.Context, exp models.Experiment, w io.Writer) error {
	scenes, err := d.sink.ListScenes(ctx, exp.SceneFilter)
	if err != nil {
		return err
	}
	if err := Validate(exp, scenes); err != nil {
		return err
	}

	samples := ExpandSamples(scenes)
	pairs := Pairs(exp, samples)

	if err := d.sink.SetExperimentStatus(ctx, exp.ID, models.ExperimentRunning); err != nil {
		return err
	}

	runErr := d.orchestrator.Run(ctx, exp.ID, pairs, w)

	finalStatus := models.ExperimentCompleted
	if runErr != nil {
		finalStatus = models.ExperimentFailed
	}
	if err := d.sink.SetExperimentStatus(ctx, exp.ID, finalStatus); err != nil {
		if runErr == nil {
			return err
		}
	}
	return runErr
}

// RunAsync launches Run in a goroutine and returns immediately. The
// returned function blocks until the run completes and returns its error.
func (d *Driver) RunAsync(ctx context.Context, exp models.Experiment, w io.Writer) func() error {
	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = d.Run(ctx, exp, w)
	}()
	return func() error {
		wg.Wait()
		return runErr
	}
}

// Delete cascades an experiment's deletion to its recorded runs (§4.11).
func Delete(ctx context.Context, sink store.Adapter, experimentID string) error {
	return sink.DeleteRunsForExperiment(ctx, experimentID)
}
