package output

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVReportWriter writes run reports as CSV, one row per table.
type CSVReportWriter struct{}

// Write outputs the run report as CSV.
func (w *CSVReportWriter) Write(report *RunReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		writer := csv.NewWriter(out)
		res := report.Result

		rows := [][]string{
			{"Table", "Inserted", "Chunks", "Skipped", "TotalRows"},
			{"commit_details", strconv.Itoa(res.Commits), strconv.Itoa(res.CommitChunks), strconv.Itoa(res.Skipped.Commits), strconv.Itoa(report.Totals.Commits)},
			{"commit_relation", strconv.Itoa(res.Relations), "", "", strconv.Itoa(report.Totals.Relations)},
			{"ref_details", strconv.Itoa(res.Refs), strconv.Itoa(res.RefChunks), strconv.Itoa(res.Skipped.Refs), strconv.Itoa(report.Totals.Refs)},
		}
		return writer.WriteAll(rows)
	})
}
