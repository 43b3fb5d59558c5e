package output

import (
	"io"
	"time"

	"github.com/masmgr/gitsqlite/internal/pipeline"
	"github.com/masmgr/gitsqlite/internal/store"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleReportWriter)(nil)
	_ ReportWriter = (*JSONReportWriter)(nil)
	_ ReportWriter = (*CSVReportWriter)(nil)
	_ ReportWriter = (*MarkdownReportWriter)(nil)
	_ ReportWriter = (*CIReportWriter)(nil)

	_ pipeline.Progress = (*ConsoleProgress)(nil)
	_ pipeline.Progress = (*CIProgress)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
	Verbose    bool // report every committed chunk
	Quiet      bool // suppress progress lines
}

// RunReport holds the outcome of one export run.
type RunReport struct {
	RepoPath      string
	DBPath        string
	SchemaCreated bool
	GeneratedAt   time.Time
	Result        pipeline.Result
	Totals        store.Counts // rows in the destination after the run
}

// ReportWriter writes run reports.
type ReportWriter interface {
	Write(report *RunReport, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONReportWriter{}
	case FormatCSV:
		return &CSVReportWriter{}
	case FormatMarkdown:
		return &MarkdownReportWriter{}
	case FormatCI:
		return &CIReportWriter{}
	default:
		return &ConsoleReportWriter{}
	}
}

// NewProgress creates the progress reporter matching the output format.
// Console progress goes to w; with other formats it goes to errw so that
// the report stream stays machine readable. CI progress is NDJSON on w.
func NewProgress(options OutputOptions, w, errw io.Writer) pipeline.Progress {
	if options.Quiet {
		return pipeline.NopProgress{}
	}
	switch options.Format {
	case FormatCI:
		return &CIProgress{Out: w}
	case FormatConsole, "":
		return &ConsoleProgress{Out: w, Verbose: options.Verbose}
	default:
		return &ConsoleProgress{Out: errw, Verbose: options.Verbose}
	}
}
