package git

import "context"

// GraphSource reads the commit graph and reference set of a repository.
// Both methods materialize their full result before returning.
type GraphSource interface {
	// Commits returns every commit reachable from HEAD, descendants before ancestors.
	Commits(ctx context.Context) ([]RawCommit, error)
	// References returns every reference in the repository.
	References(ctx context.Context) ([]RawReference, error)
}

// Compile-time interface conformance check.
var (
	_ GraphSource = (*HistoryReader)(nil)
	_ GraphSource = (*CLIReader)(nil)
)

// Open returns the graph source selected by opts.Backend.
func Open(opts ReadOptions) (GraphSource, error) {
	backend, err := ParseBackend(string(opts.Backend))
	if err != nil {
		return nil, err
	}
	if backend == BackendGitCLI {
		return NewCLIReader(opts)
	}
	return NewHistoryReader(opts)
}
