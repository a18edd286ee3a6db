package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/2nod/evalrunner/pkg/aggregate"
	"github.com/2nod/evalrunner/pkg/models"
)

func aggregateCommand(args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	var runs globList
	fs.Var(&runs, "runs", "run JSONL glob, may be repeated (required)")
	outputPath := fs.String("output", "", "destination (required)")
	format := fs.String("format", "json", "json or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(runs) == 0 || *outputPath == "" {
		return fmt.Errorf("aggregate requires at least one -runs glob and -output")
	}
	if *format != "json" && *format != "csv" {
		return fmt.Errorf("invalid -format %q (must be json or csv)", *format)
	}

	records, err := loadRunRecords(runs)
	if err != nil {
		return err
	}

	rows := aggregate.Summarize(records)

	out, err := os.Create(*outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if *format == "csv" {
		return aggregate.WriteCSV(out, rows)
	}
	return aggregate.WriteJSON(out, rows)
}

func extractFailuresCommand(args []string) error {
	fs := flag.NewFlagSet("extract-failures", flag.ContinueOnError)
	var runs globList
	fs.Var(&runs, "runs", "run JSONL glob, may be repeated (required)")
	outputPath := fs.String("output", "", "destination JSONL (required)")
	threshold := fs.Float64("threshold", aggregate.DefaultFailureThreshold, "overall-score floor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(runs) == 0 || *outputPath == "" {
		return fmt.Errorf("extract-failures requires at least one -runs glob and -output")
	}

	records, err := loadRunRecords(runs)
	if err != nil {
		return err
	}

	failures := aggregate.ExtractFailures(records, *threshold)

	out, err := os.Create(*outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return aggregate.WriteRunRecordsJSONL(out, failures)
}

// loadRunRecords expands every glob pattern in runs, reads each matched
// file as run JSONL, and concatenates the records in a stable,
// path-sorted order.
func loadRunRecords(runs globList) ([]models.RunRecord, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range runs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid -runs glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("-runs glob %q matched no files", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	var all []models.RunRecord
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		records, err := aggregate.ReadRecords(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, records...)
	}
	return all, nil
}
