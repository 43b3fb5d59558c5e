package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/masmgr/gitsqlite/internal/pipeline"
)

// CIReportWriter writes the run report as a single NDJSON summary line for CI pipelines.
type CIReportWriter struct{}

// CISummary is the last line of CI output.
type CISummary struct {
	Type string `json:"type"`
	JSONRunReport
}

// CIEvent is one progress line of CI output.
type CIEvent struct {
	Type  string `json:"type"`
	Stage string `json:"stage"`
	Chunk int    `json:"chunk,omitempty"`
	Total int    `json:"total,omitempty"`
	Rows  int    `json:"rows"`
}

// Write outputs the run report as NDJSON.
func (w *CIReportWriter) Write(report *RunReport, options OutputOptions) error {
	return withOutput(options.OutputPath, func(out io.Writer) error {
		return writeNDJSONLine(out, CISummary{Type: "summary", JSONRunReport: newJSONRunReport(report)})
	})
}

// CIProgress emits progress events as NDJSON lines.
type CIProgress struct {
	Out io.Writer
}

func (p *CIProgress) emit(e CIEvent) {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	// Progress is informational; a failed write must not stop the export.
	_ = writeNDJSONLine(out, e)
}

// StageStarted emits a stage_started event.
func (p *CIProgress) StageStarted(stage pipeline.Stage) {
	p.emit(CIEvent{Type: "stage_started", Stage: string(stage)})
}

// ChunkCommitted emits a chunk_committed event.
func (p *CIProgress) ChunkCommitted(stage pipeline.Stage, chunk, total, rows int) {
	p.emit(CIEvent{Type: "chunk_committed", Stage: string(stage), Chunk: chunk, Total: total, Rows: rows})
}

// StageFinished emits a stage_finished event.
func (p *CIProgress) StageFinished(stage pipeline.Stage, rows int) {
	p.emit(CIEvent{Type: "stage_finished", Stage: string(stage), Rows: rows})
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
