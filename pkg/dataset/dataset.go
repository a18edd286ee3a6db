// Package dataset reads the input dataset JSONL format (§6.1): one
// sample per line with a nested ja.{text,context} pair, an optional
// partial constraint record, and an optional reference.en translation.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/2nod/evalrunner/pkg/models"
)

type line struct {
	ID string `json:"id"`
	JA struct {
		Text    string `json:"text"`
		Context string `json:"context"`
	} `json:"ja"`
	Constraints models.ConstraintPartial `json:"constraints"`
	Reference   struct {
		EN string `json:"en"`
	} `json:"reference"`
}

// ReadJSONL parses every non-blank line of r into a Sample.
func ReadJSONL(r io.Reader) ([]models.Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var samples []models.Sample
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", lineNo, err)
		}
		if l.ID == "" {
			return nil, fmt.Errorf("dataset: line %d: missing required field id", lineNo)
		}
		if l.JA.Text == "" {
			return nil, fmt.Errorf("dataset: line %d: missing required field ja.text", lineNo)
		}
		samples = append(samples, models.Sample{
			SampleID:    l.ID,
			SourceText:  l.JA.Text,
			Context:     l.JA.Context,
			Constraints: l.Constraints,
			Reference:   l.Reference.EN,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
