package output

import (
	"fmt"
	"io"
)

// MarkdownReportWriter writes run reports as Markdown.
type MarkdownReportWriter struct{}

// Write outputs the run report as Markdown.
func (w *MarkdownReportWriter) Write(report *RunReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		res := report.Result

		// Header
		fmt.Fprintln(out, "# Export Summary")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
		fmt.Fprintf(out, "**Database:** %s\n\n", report.DBPath)
		fmt.Fprintf(out, "**Generated:** %s\n\n", report.GeneratedAt.Format(reportDateTimeLayout))
		fmt.Fprintf(out, "**Duration:** %s\n\n", formatDuration(res.Duration))

		// Table
		fmt.Fprintln(out, "| Table | Inserted | Chunks | Total rows |")
		fmt.Fprintln(out, "|-------|---------:|-------:|-----------:|")
		fmt.Fprintf(out, "| `commit_details` | %d | %d | %d |\n", res.Commits, res.CommitChunks, report.Totals.Commits)
		fmt.Fprintf(out, "| `commit_relation` | %d | - | %d |\n", res.Relations, report.Totals.Relations)
		fmt.Fprintf(out, "| `ref_details` | %d | %d | %d |\n", res.Refs, res.RefChunks, report.Totals.Refs)

		if res.Skipped.Total() > 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "> Skipped %d commit(s) and %d reference(s) that failed to resolve.\n",
				res.Skipped.Commits, res.Skipped.Refs)
		}

		return nil
	})
}
