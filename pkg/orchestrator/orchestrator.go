// Package orchestrator drives every (sample, condition) pair through the
// pipeline stages (§4.10): constraint normalization, optional state
// build, translation, verify/repair loop, and judging, then emits the
// resulting RunRecord to a serialized JSONL writer and an optional
// store sink.
package orchestrator

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/2nod/evalrunner/pkg/constraints"
	"github.com/2nod/evalrunner/pkg/hardcheck"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/pipeline"
	"github.com/2nod/evalrunner/pkg/store"
	"github.com/2nod/evalrunner/pkg/tracing"
)

// Pair is one unit of work: a sample evaluated under one condition.
type Pair struct {
	Sample    models.Sample
	Condition models.Condition
}

// Components bundles the pipeline stages the orchestrator drives. A nil
// StateBuilder falls back to the heuristic state builder and a nil
// TranslatorWithState to Translator. Translator, Verifier, Repairer, and
// Judge must be set; Verifier, Repairer, and Judge (like StateBuilder)
// tolerate a nil LLM component and then use their heuristic path.
type Components struct {
	StateBuilder        *pipeline.StateBuilder
	Translator          *pipeline.Translator
	TranslatorWithState *pipeline.Translator // used when a pair needs state and this is set
	Verifier            *pipeline.Verifier
	Repairer            *pipeline.Repairer
	Judge               *pipeline.Judge
}

// Settings controls the worker pool size and the repair loop bound.
type Settings struct {
	Concurrency int
	MaxRepairs  int
	GlobalMaxLength int
	DefaultToggles  hardcheck.Toggles
}

// Orchestrator runs a batch of Pairs against a fixed set of Components.
type Orchestrator struct {
	components Components
	settings   Settings
	defaults   models.ConstraintPartial
	sink       store.Adapter
	tracer     *tracing.Provider
	log        zerolog.Logger
}

// New builds an Orchestrator. sink and tracer may be nil.
func New(components Components, settings Settings, defaults models.ConstraintPartial, sink store.Adapter, tracer *tracing.Provider, log zerolog.Logger) *Orchestrator {
	if settings.Concurrency < 1 {
		settings.Concurrency = 2
	}
	if settings.MaxRepairs < 0 {
		settings.MaxRepairs = 0
	}
	return &Orchestrator{components: components, settings: settings, defaults: defaults, sink: sink, tracer: tracer, log: log}
}

// Run drives every pair to completion, writing one JSONL line per
// RunRecord to w through a single serialized writer goroutine so lines
// are never interleaved, and notifying the sink (if any) per record.
// Run blocks until every pair has been processed or ctx is cancelled;
// pairs already admitted to a worker run to completion even after
// cancellation, per §5's "in-flight pairs run to completion" rule.
func (o *Orchestrator) Run(ctx context.Context, runID string, pairs []Pair, w io.Writer) error {
	records := make(chan models.RunRecord, o.settings.Concurrency*2)
	writeErrCh := make(chan error, 1)

	go o.writeLoop(ctx, w, records, writeErrCh)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.settings.Concurrency)

	for _, pair := range pairs {
		pair := pair
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				// Cancellation: stop admitting new pairs. Already-running
				// goroutines (this closure, once started) still finish.
				return nil
			default:
			}
			record := o.runPairSafely(egCtx, runID, pair)
			select {
			case records <- record:
			case <-ctx.Done():
				records <- record
			}
			return nil
		})
	}

	runErr := eg.Wait()
	close(records)
	writeErr := <-writeErrCh

	if runErr != nil {
		return runErr
	}
	return writeErr
}

func (o *Orchestrator) writeLoop(ctx context.Context, w io.Writer, records <-chan models.RunRecord, done chan<- error) {
	bw := bufio.NewWriter(w)
	var firstErr error
	for record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, err := bw.Write(line); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, err := bw.WriteString("\n"); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
		if o.sink != nil {
			if err := o.sink.AppendRun(ctx, record); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if err := bw.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	done <- firstErr
}

// runPairSafely recovers from a panic in any stage and converts it into
// a status=error RunRecord carrying a synthesized critical OTHER issue,
// per §4.10 step 10.
func (o *Orchestrator) runPairSafely(ctx context.Context, runID string, pair Pair) (record models.RunRecord) {
	defer func() {
		if r := recover(); r != nil {
			record = errorRecord(runID, pair, fmt.Errorf("panic: %v", r))
		}
	}()
	rec, err := o.runPair(ctx, runID, pair)
	if err != nil {
		return errorRecord(runID, pair, err)
	}
	return rec
}

func errorRecord(runID string, pair Pair, err error) models.RunRecord {
	return models.RunRecord{
		RunID:     runID,
		Condition: pair.Condition,
		SampleID:  pair.Sample.SampleID,
		Issues: []models.Issue{{
			ID:       stableID("error", err.Error()),
			Type:     models.IssueOther,
			Severity: models.SeverityCritical,
			Rationale: err.Error(),
		}},
		Timings: models.NewTimings(),
		Status:  models.StatusError,
	}
}

func (o *Orchestrator) runPair(ctx context.Context, runID string, pair Pair) (models.RunRecord, error) {
	ctx, rootSpan := o.tracer.StartSpan(ctx, "orchestrator.pair")
	defer rootSpan.End()
	traceID := ""
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		traceID = sc.TraceID().String()
	}

	timings := models.NewTimings()
	var usage models.Usage
	sample := pair.Sample
	caps := models.CapabilitiesFor(pair.Condition)

	// 1. Normalize constraints.
	var normalized models.ConstraintSet
	t0 := time.Now()
	err := o.traced(ctx, "stage.normalize", func(stepCtx context.Context) error {
		var err error
		normalized, err = constraints.Normalize(o.defaults, sample.Constraints)
		return err
	})
	timings.Add("normalize", since(t0))
	if err != nil {
		return models.RunRecord{}, err
	}

	// 2. Build state if required.
	var state *models.State
	if caps.HasState {
		builder := o.components.StateBuilder
		if builder == nil {
			builder = pipeline.NewStateBuilder(nil, nil, nil)
		}
		t1 := time.Now()
		err := o.traced(ctx, "stage.state", func(stepCtx context.Context) error {
			built, stateUsage, err := builder.Build(stepCtx, sample)
			usage.Add(stateUsage)
			if err != nil {
				return err
			}
			state = &built
			return nil
		})
		timings.Add("state", since(t1))
		if err != nil {
			return models.RunRecord{}, err
		}
	}

	// 3/4. Choose translator variant and translate.
	translator := o.components.Translator
	if caps.HasState && o.components.TranslatorWithState != nil {
		translator = o.components.TranslatorWithState
	}
	var draft string
	t2 := time.Now()
	err = o.traced(ctx, "stage.translate", func(stepCtx context.Context) error {
		var translateUsage models.Usage
		var err error
		draft, translateUsage, err = translator.Translate(stepCtx, sample, normalized, state)
		usage.Add(translateUsage)
		return err
	})
	timings.Add("translate", since(t2))
	if err != nil {
		return models.RunRecord{}, err
	}
	current := draft

	// 5. Verify.
	var issues []models.Issue
	var hardChecks []models.HardCheckResult
	t3 := time.Now()
	err = o.traced(ctx, "stage.verify", func(stepCtx context.Context) error {
		var verifyUsage models.Usage
		var err error
		issues, hardChecks, verifyUsage, err = o.components.Verifier.Verify(stepCtx, sample.SourceText, current, normalized, sample)
		usage.Add(verifyUsage)
		return err
	})
	timings.Add("verify", since(t3))
	if err != nil {
		return models.RunRecord{}, err
	}

	// 6. Repair loop.
	if caps.HasVerifyRepair {
		for i := 0; i < o.settings.MaxRepairs; i++ {
			if !models.HasCritical(issues) && models.AllPassed(hardChecks) {
				break
			}
			t4 := time.Now()
			err := o.traced(ctx, "stage.repair", func(stepCtx context.Context) error {
				var repairUsage models.Usage
				var err error
				current, repairUsage, err = o.components.Repairer.Repair(stepCtx, sample.SourceText, current, issues, normalized, state, sample)
				usage.Add(repairUsage)
				return err
			})
			timings.Add("repair", since(t4))
			if err != nil {
				return models.RunRecord{}, err
			}

			t5 := time.Now()
			err = o.traced(ctx, "stage.verify", func(stepCtx context.Context) error {
				var verifyUsage models.Usage
				var err error
				issues, hardChecks, verifyUsage, err = o.components.Verifier.Verify(stepCtx, sample.SourceText, current, normalized, sample)
				usage.Add(verifyUsage)
				return err
			})
			timings.Add("verify", since(t5))
			if err != nil {
				return models.RunRecord{}, err
			}
		}
	}

	// 7. Judge.
	var scores models.ScoreBreakdown
	t6 := time.Now()
	err = o.traced(ctx, "stage.judge", func(stepCtx context.Context) error {
		var judgeUsage models.Usage
		var err error
		scores, judgeUsage, err = o.components.Judge.Score(stepCtx, sample.SourceText, current, sample.Reference, normalized)
		usage.Add(judgeUsage)
		return err
	})
	timings.Add("judge", since(t6))
	if err != nil {
		return models.RunRecord{}, err
	}

	timings.TotalMs = sumStages(timings)

	record := models.RunRecord{
		RunID:                 runID,
		Condition:             pair.Condition,
		SampleID:              sample.SampleID,
		Draft:                 draft,
		Final:                 current,
		Issues:                issues,
		HardChecks:            hardChecks,
		Scores:                scores,
		Usage:                 usage,
		Timings:               timings,
		State:                 state,
		NormalizedConstraints: normalized,
		Trace:                 traceID,
		Status:                models.DeriveStatus(issues, hardChecks),
	}
	return record, nil
}

// traced runs fn inside a child span named name, recording fn's error (if
// any) on the span before it ends. A no-op when tracing is disabled.
func (o *Orchestrator) traced(ctx context.Context, name string, fn func(context.Context) error) error {
	stepCtx, span := o.tracer.StartSpan(ctx, name)
	defer span.End()
	if err := fn(stepCtx); err != nil {
		tracing.RecordError(stepCtx, err)
		return err
	}
	return nil
}

func since(t time.Time) int64 { return time.Since(t).Milliseconds() }

func sumStages(t models.Timings) int64 {
	var total int64
	for _, ms := range t.Stages {
		total += ms
	}
	return total
}

func stableID(kind, payload string) string {
	sum := sha256.Sum256([]byte(kind + "|" + payload))
	return hex.EncodeToString(sum[:])[:8]
}
