package git

import "context"

// MockGraphSource is a test double for HistoryReader.
// It allows tests to provide predefined commits and references without needing a real Git repository.
type MockGraphSource struct {
	CommitList    []RawCommit
	ReferenceList []RawReference
	CommitsErr    error
	ReferencesErr error
}

// NewMockGraphSource creates a new MockGraphSource with the given data.
func NewMockGraphSource(commits []RawCommit, refs []RawReference) *MockGraphSource {
	return &MockGraphSource{
		CommitList:    commits,
		ReferenceList: refs,
	}
}

// Commits returns the predefined commits or error.
func (m *MockGraphSource) Commits(_ context.Context) ([]RawCommit, error) {
	return m.CommitList, m.CommitsErr
}

// References returns the predefined references or error.
func (m *MockGraphSource) References(_ context.Context) ([]RawReference, error) {
	return m.ReferenceList, m.ReferencesErr
}

// Compile-time interface conformance check.
var _ GraphSource = (*MockGraphSource)(nil)
