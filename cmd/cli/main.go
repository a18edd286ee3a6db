// Command evalrunner drives offline evaluation runs of the translation
// pipeline: run, run-one, aggregate, and extract-failures.
package main

import (
	"fmt"
	"os"
)

const usage = `evalrunner - offline LLM translation evaluation harness

USAGE:
    evalrunner <command> [options]

COMMANDS:
    run               Run an entire experiment over a dataset
    run-one           Run a single sample and print its result
    aggregate         Summarize run JSONL files into per-run rows
    extract-failures  Copy failing or low-scoring records out of run JSONL files
    help              Show this help message

RUN OPTIONS:
    -config FILE      Configuration document (required)
    -input FILE       Dataset JSONL (required)
    -output FILE      Output JSONL destination (required)
    -conditions CSV   Conditions to run, e.g. A0,A1,A2,A3 (default: all four)
    -run-id ID        Run identifier stamped on every record (default: generated)
    -overwrite        Overwrite -output if it already exists
    -dry-run          Validate configuration and dataset, then exit without calling any LLM

RUN-ONE OPTIONS:
    -config FILE          Configuration document (required)
    -sample FILE           Dataset JSONL line to run (default: stdin)
    -condition A0|A1|A2|A3 Condition to run (default: A0)
    -output-format text|json  Print final.en text or the full RunRecord (default: text)

AGGREGATE OPTIONS:
    -runs GLOB        Run JSONL glob, may be repeated (required)
    -output FILE       Destination (required)
    -format json|csv   Output format (default: json)

EXTRACT-FAILURES OPTIONS:
    -runs GLOB         Run JSONL glob, may be repeated (required)
    -output FILE        Destination JSONL (required)
    -threshold FLOAT    Overall-score floor (default: 0.9)

ENVIRONMENT:
    OPENAI_API_KEY    Required when any component selects provider=openai
    LOG_LEVEL         debug|info|warn|error (default: info)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(os.Args[2:])
	case "run-one":
		err = runOneCommand(os.Args[2:])
	case "aggregate":
		err = aggregateCommand(os.Args[2:])
	case "extract-failures":
		err = extractFailuresCommand(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
