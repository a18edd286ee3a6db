package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/2nod/evalrunner/internal/config"
	"github.com/2nod/evalrunner/internal/logger"
	"github.com/2nod/evalrunner/pkg/dataset"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/orchestrator"
)

func runOneCommand(args []string) error {
	fs := flag.NewFlagSet("run-one", flag.ContinueOnError)
	configPath := fs.String("config", "", "configuration document (required)")
	samplePath := fs.String("sample", "", "dataset JSONL line to run (default: stdin)")
	condition := fs.String("condition", "A0", "condition to run: A0, A1, A2, or A3")
	outputFormat := fs.String("output-format", "text", "text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("run-one requires -config")
	}
	if *outputFormat != "text" && *outputFormat != "json" {
		return fmt.Errorf("invalid -output-format %q (must be text or json)", *outputFormat)
	}

	cond := models.Condition(*condition)
	if !models.ValidConditions[cond] {
		return fmt.Errorf("unknown condition %q", *condition)
	}

	doc, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	var reader io.Reader = os.Stdin
	if *samplePath != "" {
		f, err := os.Open(*samplePath)
		if err != nil {
			return err
		}
		defer f.Close()
		reader = f
	}

	samples, err := dataset.ReadJSONL(reader)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no sample provided")
	}

	gw, err := buildGateway(doc)
	if err != nil {
		return err
	}
	components := buildComponents(doc, gw)

	orch := orchestrator.New(components, orchestrator.Settings{
		Concurrency: 1,
		MaxRepairs:  doc.RunSettings.MaxRepairs,
	}, doc.Defaults.Constraints, nil, nil, logger.FromEnv())

	var buf bytes.Buffer
	runID := uuid.New().String()
	pair := orchestrator.Pair{Sample: samples[0], Condition: cond}
	if err := orch.Run(context.Background(), runID, []orchestrator.Pair{pair}, &buf); err != nil {
		return err
	}

	line := bytes.TrimSpace(buf.Bytes())
	var record models.RunRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return err
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}
	fmt.Println(record.Final)
	return nil
}
