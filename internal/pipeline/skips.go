package pipeline

import (
	"log/slog"

	"github.com/masmgr/gitsqlite/internal/git"
)

// SkipCounts is the number of items dropped during traversal.
type SkipCounts struct {
	Commits int `json:"commits"`
	Refs    int `json:"refs"`
}

// Total returns the number of skipped items of any kind.
func (c SkipCounts) Total() int {
	return c.Commits + c.Refs
}

// SkipLog logs and counts items the graph source could not resolve.
// Its Record method is meant to be used as git.ReadOptions.OnSkip.
type SkipLog struct {
	logger *slog.Logger
	counts SkipCounts
}

// NewSkipLog creates a SkipLog writing to logger (slog.Default() when nil).
func NewSkipLog(logger *slog.Logger) *SkipLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &SkipLog{logger: logger}
}

// Record logs the skipped item and counts it.
func (s *SkipLog) Record(kind git.SkipKind, id string, err error) {
	s.logger.Warn("skipping item that failed to resolve",
		slog.String("kind", string(kind)),
		slog.String("id", id),
		slog.Any("error", err))

	switch kind {
	case git.SkipReference:
		s.counts.Refs++
	default:
		s.counts.Commits++
	}
}

// Counts returns the skips recorded so far.
func (s *SkipLog) Counts() SkipCounts {
	return s.counts
}
