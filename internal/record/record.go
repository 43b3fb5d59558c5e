package record

import "github.com/masmgr/gitsqlite/internal/git"

// Fallbacks for fields the repository did not provide, and the stored reference kinds.
const (
	UnknownAuthor = "Unknown"
	NoMessage     = "No message"
	UnknownTarget = "Unknown"
	KindDirect    = "Direct"
	KindSymbolic  = "Symbolic"
	KindUnknown   = "Unknown"
)

// CommitRecord is one row of commit_details plus the parent list used to derive relations.
type CommitRecord struct {
	ID      string   `db:"id" json:"id"`
	Author  string   `db:"author" json:"author"`
	Date    int64    `db:"date" json:"date"`
	Message string   `db:"message" json:"message"`
	Parents []string `db:"-" json:"parents"`
}

// CommitRelation is one row of commit_relation: an edge from a parent to its child.
type CommitRelation struct {
	Parent string `db:"parent" json:"parent"`
	Child  string `db:"child" json:"child"`
}

// RefRecord is one row of ref_details.
type RefRecord struct {
	Name string `db:"name" json:"name"`
	ID   string `db:"id" json:"id"`
	Kind string `db:"kind" json:"kind"`
}

// NormalizedCommit bundles a commit row with the relation rows derived from it.
type NormalizedCommit struct {
	Commit    CommitRecord
	Relations []CommitRelation
}

// NormalizeCommit maps a raw commit to its record and one relation per parent.
func NormalizeCommit(c git.RawCommit) NormalizedCommit {
	author := c.AuthorName
	if author == "" {
		author = UnknownAuthor
	}
	message := c.Message
	if message == "" {
		message = NoMessage
	}

	parents := make([]string, len(c.Parents))
	copy(parents, c.Parents)

	relations := make([]CommitRelation, 0, len(parents))
	for _, p := range parents {
		relations = append(relations, CommitRelation{Parent: p, Child: c.ID})
	}

	return NormalizedCommit{
		Commit: CommitRecord{
			ID:      c.ID,
			Author:  author,
			Date:    c.When,
			Message: message,
			Parents: parents,
		},
		Relations: relations,
	}
}

// NormalizeCommits maps every raw commit, preserving order.
func NormalizeCommits(commits []git.RawCommit) []NormalizedCommit {
	out := make([]NormalizedCommit, 0, len(commits))
	for _, c := range commits {
		out = append(out, NormalizeCommit(c))
	}
	return out
}

// NormalizeRef maps a raw reference to its record.
func NormalizeRef(r git.RawReference) RefRecord {
	target := r.Target
	if target == "" {
		target = UnknownTarget
	}
	return RefRecord{
		Name: r.Name,
		ID:   target,
		Kind: kindName(r.Kind),
	}
}

// NormalizeRefs maps every raw reference, preserving order.
func NormalizeRefs(refs []git.RawReference) []RefRecord {
	out := make([]RefRecord, 0, len(refs))
	for _, r := range refs {
		out = append(out, NormalizeRef(r))
	}
	return out
}

func kindName(k git.ReferenceKind) string {
	switch k {
	case git.ReferenceKindDirect:
		return KindDirect
	case git.ReferenceKindSymbolic:
		return KindSymbolic
	default:
		return KindUnknown
	}
}
