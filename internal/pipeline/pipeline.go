// Package pipeline drives commits and references from a graph source into a sink.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/masmgr/gitsqlite/internal/batch"
	"github.com/masmgr/gitsqlite/internal/git"
	"github.com/masmgr/gitsqlite/internal/record"
	"github.com/masmgr/gitsqlite/internal/store"
)

// Sink is the transactional destination of the pipeline.
type Sink interface {
	WithTx(ctx context.Context, fn func(store.Inserter) error) error
}

// Compile-time interface conformance check.
var _ Sink = (*store.Store)(nil)

// Stage identifies one of the two sub-pipelines.
type Stage string

const (
	StageCommits Stage = "commits"
	StageRefs    Stage = "refs"
)

// Title is the progress line printed when the stage starts.
func (s Stage) Title() string {
	switch s {
	case StageCommits:
		return "Getting Commit Details..."
	case StageRefs:
		return "Getting Ref Details..."
	default:
		return string(s)
	}
}

// Progress receives informational events while the pipeline runs.
type Progress interface {
	StageStarted(stage Stage)
	ChunkCommitted(stage Stage, chunk, total, rows int)
	StageFinished(stage Stage, rows int)
}

// Options configures a Driver.
type Options struct {
	ChunkSize int
	Progress  Progress
	Skips     *SkipLog
}

// Result summarizes a finished (or failed) run.
type Result struct {
	Commits      int           `json:"commits"`
	Relations    int           `json:"relations"`
	Refs         int           `json:"refs"`
	CommitChunks int           `json:"commitChunks"`
	RefChunks    int           `json:"refChunks"`
	Skipped      SkipCounts    `json:"skipped"`
	Duration     time.Duration `json:"duration"`
}

// ChunkError reports the chunk whose transaction failed.
type ChunkError struct {
	Stage Stage
	Chunk int // 1-based
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s chunk %d/%d: %v", e.Stage, e.Chunk, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Driver runs the commit sub-pipeline and then the reference sub-pipeline.
type Driver struct {
	source git.GraphSource
	sink   Sink
	opts   Options
}

// NewDriver creates a driver. A zero ChunkSize selects batch.DefaultChunkSize.
func NewDriver(source git.GraphSource, sink Sink, opts Options) *Driver {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = batch.DefaultChunkSize
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}
	return &Driver{source: source, sink: sink, opts: opts}
}

// Run persists every commit, then every reference. The first failure stops
// the run; chunks committed before it stay persisted. The returned Result
// covers the work done up to that point.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	err := d.runCommits(ctx, &res)
	if err == nil {
		err = d.runRefs(ctx, &res)
	}

	if d.opts.Skips != nil {
		res.Skipped = d.opts.Skips.Counts()
	}
	res.Duration = time.Since(start)
	return res, err
}

func (d *Driver) runCommits(ctx context.Context, res *Result) error {
	d.opts.Progress.StageStarted(StageCommits)

	raw, err := d.source.Commits(ctx)
	if err != nil {
		return fmt.Errorf("read commits: %w", err)
	}
	commits := record.NormalizeCommits(raw)

	chunks := batch.Chunk(commits, d.opts.ChunkSize)
	for i, chunk := range chunks {
		relations := 0
		err := d.sink.WithTx(ctx, func(ins store.Inserter) error {
			for _, c := range chunk {
				if err := ins.InsertCommit(c.Commit); err != nil {
					return err
				}
				for _, rel := range c.Relations {
					if err := ins.InsertRelation(rel); err != nil {
						return err
					}
				}
				relations += len(c.Relations)
			}
			return nil
		})
		if err != nil {
			return &ChunkError{Stage: StageCommits, Chunk: i + 1, Total: len(chunks), Err: err}
		}

		res.Commits += len(chunk)
		res.Relations += relations
		res.CommitChunks++
		d.opts.Progress.ChunkCommitted(StageCommits, i+1, len(chunks), len(chunk))
	}

	d.opts.Progress.StageFinished(StageCommits, res.Commits)
	return nil
}

func (d *Driver) runRefs(ctx context.Context, res *Result) error {
	d.opts.Progress.StageStarted(StageRefs)

	raw, err := d.source.References(ctx)
	if err != nil {
		return fmt.Errorf("read references: %w", err)
	}
	refs := record.NormalizeRefs(raw)

	chunks := batch.Chunk(refs, d.opts.ChunkSize)
	for i, chunk := range chunks {
		err := d.sink.WithTx(ctx, func(ins store.Inserter) error {
			for _, r := range chunk {
				if err := ins.InsertRef(r); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return &ChunkError{Stage: StageRefs, Chunk: i + 1, Total: len(chunks), Err: err}
		}

		res.Refs += len(chunk)
		res.RefChunks++
		d.opts.Progress.ChunkCommitted(StageRefs, i+1, len(chunks), len(chunk))
	}

	d.opts.Progress.StageFinished(StageRefs, res.Refs)
	return nil
}

// NopProgress discards progress events.
type NopProgress struct{}

func (NopProgress) StageStarted(Stage) {}

func (NopProgress) ChunkCommitted(Stage, int, int, int) {}

func (NopProgress) StageFinished(Stage, int) {}
