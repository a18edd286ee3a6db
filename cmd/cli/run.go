package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/2nod/evalrunner/internal/config"
	"github.com/2nod/evalrunner/internal/logger"
	"github.com/2nod/evalrunner/pkg/dataset"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/orchestrator"
)

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "configuration document (required)")
	inputPath := fs.String("input", "", "dataset JSONL (required)")
	outputPath := fs.String("output", "", "output JSONL destination (required)")
	conditionsCSV := fs.String("conditions", "", "conditions to run, e.g. A0,A1,A2,A3 (default: all four)")
	runID := fs.String("run-id", "", "run identifier stamped on every record (default: generated)")
	overwrite := fs.Bool("overwrite", false, "overwrite -output if it already exists")
	dryRun := fs.Bool("dry-run", false, "validate configuration and dataset, then exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" || *inputPath == "" || *outputPath == "" {
		return fmt.Errorf("run requires -config, -input, and -output")
	}

	log := logger.FromEnv()

	doc, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	inputFile, err := os.Open(*inputPath)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	samples, err := dataset.ReadJSONL(inputFile)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("dataset %s contains no samples", *inputPath)
	}

	conditionNames, err := parseConditions(*conditionsCSV)
	if err != nil {
		return err
	}
	conditions := make([]models.Condition, 0, len(conditionNames))
	for _, name := range conditionNames {
		c := models.Condition(name)
		if !models.ValidConditions[c] {
			return fmt.Errorf("unknown condition %q", name)
		}
		conditions = append(conditions, c)
	}

	if *dryRun {
		log.Info().Int("samples", len(samples)).Strs("conditions", conditionNames).Msg("dry run: configuration and dataset are valid")
		return nil
	}

	if !*overwrite {
		if _, err := os.Stat(*outputPath); err == nil {
			return fmt.Errorf("output %s already exists; pass -overwrite to replace it", *outputPath)
		}
	}
	outputFile, err := os.Create(*outputPath)
	if err != nil {
		return err
	}
	defer outputFile.Close()

	gw, err := buildGateway(doc)
	if err != nil {
		return err
	}
	components := buildComponents(doc, gw)

	id := *runID
	if id == "" {
		id = uuid.New().String()
	}

	pairs := make([]orchestrator.Pair, 0, len(samples)*len(conditions))
	for _, s := range samples {
		for _, c := range conditions {
			pairs = append(pairs, orchestrator.Pair{Sample: s, Condition: c})
		}
	}

	orch := orchestrator.New(components, orchestrator.Settings{
		Concurrency: doc.RunSettings.Concurrency,
		MaxRepairs:  doc.RunSettings.MaxRepairs,
	}, doc.Defaults.Constraints, nil, nil, log)

	log.Info().Str("runId", id).Int("pairs", len(pairs)).Msg("starting run")
	if err := orch.Run(context.Background(), id, pairs, outputFile); err != nil {
		return err
	}
	log.Info().Str("runId", id).Msg("run complete")
	return nil
}
