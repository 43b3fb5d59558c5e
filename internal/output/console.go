package output

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/masmgr/gitsqlite/internal/pipeline"
)

// ConsoleReportWriter writes run reports to the console.
type ConsoleReportWriter struct{}

// Write outputs the run report to the console.
func (w *ConsoleReportWriter) Write(report *RunReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		color.New(color.FgGreen).Fprintln(out, "Export Summary")
		fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
		fmt.Fprintf(out, "Database: %s\n", report.DBPath)
		if report.SchemaCreated {
			fmt.Fprintln(out, "Schema: created")
		}
		fmt.Fprintf(out, "Duration: %s\n\n", formatDuration(report.Result.Duration))

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Table\tInserted\tChunks\tTotal rows")
		fmt.Fprintf(tw, "commit_details\t%d\t%d\t%d\n", report.Result.Commits, report.Result.CommitChunks, report.Totals.Commits)
		fmt.Fprintf(tw, "commit_relation\t%d\t-\t%d\n", report.Result.Relations, report.Totals.Relations)
		fmt.Fprintf(tw, "ref_details\t%d\t%d\t%d\n", report.Result.Refs, report.Result.RefChunks, report.Totals.Refs)
		tw.Flush()

		if skipped := report.Result.Skipped; skipped.Total() > 0 {
			color.New(color.FgYellow).Fprintf(out, "\nSkipped %d commit(s) and %d reference(s) that failed to resolve\n",
				skipped.Commits, skipped.Refs)
		}

		return nil
	})
}

// ConsoleProgress prints human-readable status lines.
type ConsoleProgress struct {
	Out     io.Writer
	Verbose bool
}

func (p *ConsoleProgress) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// StageStarted prints the stage title.
func (p *ConsoleProgress) StageStarted(stage pipeline.Stage) {
	fmt.Fprintln(p.out(), stage.Title())
}

// ChunkCommitted prints one line per chunk when Verbose is set.
func (p *ConsoleProgress) ChunkCommitted(stage pipeline.Stage, chunk, total, rows int) {
	if !p.Verbose {
		return
	}
	fmt.Fprintf(p.out(), "  %s: chunk %d/%d committed (%d rows)\n", stage, chunk, total, rows)
}

// StageFinished prints "Done!".
func (p *ConsoleProgress) StageFinished(pipeline.Stage, int) {
	color.New(color.FgGreen).Fprintln(p.out(), "Done!")
}
