package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONReportWriter writes run reports as JSON.
type JSONReportWriter struct{}

// JSONRunReport is the JSON output structure for a run.
type JSONRunReport struct {
	RepoPath      string       `json:"repo"`
	DBPath        string       `json:"database"`
	SchemaCreated bool         `json:"schemaCreated"`
	GeneratedAt   string       `json:"generatedAt"`
	DurationMs    int64        `json:"durationMs"`
	Inserted      JSONInserted `json:"inserted"`
	Chunks        JSONChunks   `json:"chunks"`
	Skipped       JSONSkipped  `json:"skipped"`
	Totals        JSONInserted `json:"totals"`
}

// JSONInserted holds per-table row counts.
type JSONInserted struct {
	Commits   int `json:"commits"`
	Relations int `json:"relations"`
	Refs      int `json:"refs"`
}

// JSONChunks holds the number of committed transactions per sub-pipeline.
type JSONChunks struct {
	Commits int `json:"commits"`
	Refs    int `json:"refs"`
}

// JSONSkipped holds the number of items skipped during traversal.
type JSONSkipped struct {
	Commits int `json:"commits"`
	Refs    int `json:"refs"`
}

func newJSONRunReport(report *RunReport) JSONRunReport {
	res := report.Result
	return JSONRunReport{
		RepoPath:      report.RepoPath,
		DBPath:        report.DBPath,
		SchemaCreated: report.SchemaCreated,
		GeneratedAt:   report.GeneratedAt.Format(reportDateTimeLayout),
		DurationMs:    res.Duration.Milliseconds(),
		Inserted:      JSONInserted{Commits: res.Commits, Relations: res.Relations, Refs: res.Refs},
		Chunks:        JSONChunks{Commits: res.CommitChunks, Refs: res.RefChunks},
		Skipped:       JSONSkipped{Commits: res.Skipped.Commits, Refs: res.Skipped.Refs},
		Totals: JSONInserted{
			Commits:   report.Totals.Commits,
			Relations: report.Totals.Relations,
			Refs:      report.Totals.Refs,
		},
	}
}

// Write outputs the run report as JSON.
func (w *JSONReportWriter) Write(report *RunReport, options OutputOptions) error {
	data, err := json.MarshalIndent(newJSONRunReport(report), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return withOutput(options.OutputPath, func(out io.Writer) error {
		_, err := fmt.Fprintln(out, string(data))
		return err
	})
}
