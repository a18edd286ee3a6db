// Package aggregate implements the `aggregate` and `extract-failures`
// CLI operations (§6.4): summarizing run JSONL into per-(run,condition)
// rows, and copying out records that failed or scored poorly.
package aggregate

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/2nod/evalrunner/pkg/models"
)

// Row is one summarized (runId, condition) group.
type Row struct {
	RunID          string  `json:"runId"`
	Condition      string  `json:"condition"`
	Samples        int     `json:"samples"`
	AvgOverall     float64 `json:"avgOverall"`
	MinOverall     float64 `json:"minOverall"`
	MaxOverall     float64 `json:"maxOverall"`
	FailureRate    float64 `json:"failureRate"`
	CriticalIssues int     `json:"criticalIssues"`
}

type groupKey struct {
	runID     string
	condition models.Condition
}

// ReadRecords decodes every RunRecord line from r, skipping blank lines.
func ReadRecords(r io.Reader) ([]models.RunRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var records []models.RunRecord
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.RunRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("aggregate: parse run record: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Summarize groups records by (runId, condition) and computes the
// aggregate row for each group, in a stable order (runId, then
// condition, both ascending).
func Summarize(records []models.RunRecord) []Row {
	groups := make(map[groupKey][]models.RunRecord)
	for _, rec := range records {
		key := groupKey{runID: rec.RunID, condition: rec.Condition}
		groups[key] = append(groups[key], rec)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].runID != keys[j].runID {
			return keys[i].runID < keys[j].runID
		}
		return keys[i].condition < keys[j].condition
	})

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		recs := groups[key]
		row := Row{RunID: key.runID, Condition: string(key.condition), Samples: len(recs)}

		var sum float64
		var failures int
		var critical int
		for i, rec := range recs {
			if i == 0 {
				row.MinOverall = rec.Scores.Overall
				row.MaxOverall = rec.Scores.Overall
			}
			if rec.Scores.Overall < row.MinOverall {
				row.MinOverall = rec.Scores.Overall
			}
			if rec.Scores.Overall > row.MaxOverall {
				row.MaxOverall = rec.Scores.Overall
			}
			sum += rec.Scores.Overall
			if rec.Status != models.StatusOK {
				failures++
			}
			for _, issue := range rec.Issues {
				if issue.Severity == models.SeverityCritical {
					critical++
				}
			}
		}
		if len(recs) > 0 {
			row.AvgOverall = sum / float64(len(recs))
			row.FailureRate = float64(failures) / float64(len(recs))
		}
		row.CriticalIssues = critical
		rows = append(rows, row)
	}
	return rows
}

// WriteJSON writes rows as a JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteCSV writes rows as CSV with a header row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	header := []string{"runId", "condition", "samples", "avgOverall", "minOverall", "maxOverall", "failureRate", "criticalIssues"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.RunID,
			row.Condition,
			strconv.Itoa(row.Samples),
			strconv.FormatFloat(row.AvgOverall, 'f', 4, 64),
			strconv.FormatFloat(row.MinOverall, 'f', 4, 64),
			strconv.FormatFloat(row.MaxOverall, 'f', 4, 64),
			strconv.FormatFloat(row.FailureRate, 'f', 4, 64),
			strconv.Itoa(row.CriticalIssues),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DefaultFailureThreshold is the --threshold default for extract-failures.
const DefaultFailureThreshold = 0.9

// ExtractFailures returns every record with status=needs_review (or
// status=error) or scores.overall below threshold.
func ExtractFailures(records []models.RunRecord, threshold float64) []models.RunRecord {
	var out []models.RunRecord
	for _, rec := range records {
		if rec.Status != models.StatusOK || rec.Scores.Overall < threshold {
			out = append(out, rec)
		}
	}
	return out
}

// WriteRunRecordsJSONL writes one JSON line per record.
func WriteRunRecordsJSONL(w io.Writer, records []models.RunRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
