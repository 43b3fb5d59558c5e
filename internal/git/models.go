package git

import (
	"fmt"
	"strings"
)

// RawCommit is a commit as read from the repository, before normalization.
// Empty strings mean the field was absent.
type RawCommit struct {
	ID         string
	AuthorName string
	When       int64 // committer time, seconds since epoch
	Message    string
	Parents    []string
}

// RawReference is a named pointer as read from the repository.
// Target is empty when the reference could not be resolved to an object id.
type RawReference struct {
	Name   string
	Target string
	Kind   ReferenceKind
}

// ReferenceKind distinguishes direct references from symbolic ones.
type ReferenceKind int

const (
	ReferenceKindUnknown ReferenceKind = iota
	ReferenceKindDirect
	ReferenceKindSymbolic
)

// String returns the stored name of the reference kind.
func (k ReferenceKind) String() string {
	switch k {
	case ReferenceKindDirect:
		return "Direct"
	case ReferenceKindSymbolic:
		return "Symbolic"
	default:
		return "Unknown"
	}
}

// TraversalOrder selects the order in which commits reachable from HEAD are visited.
type TraversalOrder string

const (
	OrderCommitterTime TraversalOrder = "time"
	OrderDFS           TraversalOrder = "dfs"
	OrderBFS           TraversalOrder = "bfs"
)

// DefaultOrder visits descendants before ancestors, newest committer time first.
const DefaultOrder = OrderCommitterTime

// ParseTraversalOrder parses a traversal order name. An empty string selects DefaultOrder.
func ParseTraversalOrder(s string) (TraversalOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultOrder, nil
	case "time", "committer-time", "date":
		return OrderCommitterTime, nil
	case "dfs", "preorder":
		return OrderDFS, nil
	case "bfs":
		return OrderBFS, nil
	default:
		return "", fmt.Errorf("invalid traversal order %q (expected time, dfs, bfs)", s)
	}
}

// Backend selects how the repository is read.
type Backend string

const (
	BackendNative Backend = "native" // go-git
	BackendGitCLI Backend = "gitcli" // git executable
)

// ParseBackend parses a backend name. An empty string selects BackendNative.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "go-git", "gogit":
		return BackendNative, nil
	case "gitcli", "git", "cli":
		return BackendGitCLI, nil
	default:
		return "", fmt.Errorf("invalid backend %q (expected native, gitcli)", s)
	}
}

// SkipKind identifies which traversal an item was skipped from.
type SkipKind string

const (
	SkipCommit    SkipKind = "commit"
	SkipReference SkipKind = "reference"
)

// SkipFunc is called for every item that failed to resolve during traversal.
// The item is dropped and traversal continues.
type SkipFunc func(kind SkipKind, id string, err error)

// ReadOptions configures a graph source.
type ReadOptions struct {
	RepoPath string
	Backend  Backend
	Order    TraversalOrder
	Include  []string // Glob patterns on reference names to include
	Exclude  []string // Glob patterns on reference names to exclude
	OnSkip   SkipFunc
}
