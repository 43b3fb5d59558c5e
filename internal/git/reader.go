package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoHead is returned when HEAD does not point at a commit, e.g. in an empty repository.
var ErrNoHead = errors.New("repository has no HEAD commit")

// HistoryReader reads the commit graph and references of a repository with go-git.
type HistoryReader struct {
	repo *git.Repository
	opts ReadOptions
}

// NewHistoryReader opens the repository at opts.RepoPath.
// Relative paths are resolved against the working directory and the .git
// directory is searched for upwards from there.
func NewHistoryReader(opts ReadOptions) (*HistoryReader, error) {
	if err := validateFilters(opts); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(opts.RepoPath)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", abs, err)
	}
	opts.RepoPath = abs
	return &HistoryReader{repo: repo, opts: opts}, nil
}

// NewHistoryReaderFromRepository wraps an already opened repository.
func NewHistoryReaderFromRepository(repo *git.Repository, opts ReadOptions) *HistoryReader {
	return &HistoryReader{repo: repo, opts: opts}
}

// Commits walks every commit reachable from HEAD.
// Identifiers are collected first, then each one is resolved; identifiers that
// fail to resolve are reported through OnSkip and left out.
func (r *HistoryReader) Commits(ctx context.Context) ([]RawCommit, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoHead
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	order, err := ParseTraversalOrder(string(r.opts.Order))
	if err != nil {
		return nil, err
	}

	cIter, err := r.repo.Log(&git.LogOptions{From: head.Hash(), Order: logOrder(order)})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	defer cIter.Close()

	var ids []plumbing.Hash
	err = cIter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ids = append(ids, c.Hash)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}

	slog.Debug("history walk finished",
		slog.String("head", head.Hash().String()),
		slog.String("order", string(order)),
		slog.Int("commits", len(ids)))

	results := make([]RawCommit, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := r.repo.CommitObject(id)
		if err != nil {
			r.skip(SkipCommit, id.String(), err)
			continue
		}
		results = append(results, commitFromObject(c))
	}

	return results, nil
}

// References lists every reference except the HEAD pseudo-reference, sorted by name.
func (r *HistoryReader) References(ctx context.Context) ([]RawReference, error) {
	iter, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	var refs []RawReference
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ref.Name() == plumbing.HEAD {
			return nil
		}
		if !matchesFilters(ref.Name().String(), r.opts.Include, r.opts.Exclude) {
			return nil
		}
		refs = append(refs, rawReference(ref))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// rawReference leaves Target empty for symbolic references.
func rawReference(ref *plumbing.Reference) RawReference {
	raw := RawReference{Name: ref.Name().String()}

	switch ref.Type() {
	case plumbing.HashReference:
		raw.Kind = ReferenceKindDirect
		if !ref.Hash().IsZero() {
			raw.Target = ref.Hash().String()
		}
	case plumbing.SymbolicReference:
		// A symbolic reference names another reference, not an object.
		raw.Kind = ReferenceKindSymbolic
	default:
		raw.Kind = ReferenceKindUnknown
	}

	return raw
}

func (r *HistoryReader) skip(kind SkipKind, id string, err error) {
	if r.opts.OnSkip != nil {
		r.opts.OnSkip(kind, id, err)
	}
}

func commitFromObject(c *object.Commit) RawCommit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return RawCommit{
		ID:         c.Hash.String(),
		AuthorName: c.Author.Name,
		When:       c.Committer.When.Unix(),
		Message:    c.Message,
		Parents:    parents,
	}
}

func logOrder(o TraversalOrder) git.LogOrder {
	switch o {
	case OrderDFS:
		return git.LogOrderDFS
	case OrderBFS:
		return git.LogOrderBSF
	default:
		return git.LogOrderCommitterTime
	}
}

// matchesFilters checks a reference name against include/exclude glob patterns.
func matchesFilters(name string, include, exclude []string) bool {
	// Check exclude patterns first
	for _, pattern := range exclude {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return false
		}
	}

	// If no include patterns, accept all
	if len(include) == 0 {
		return true
	}

	for _, pattern := range include {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}

	return false
}

func validateFilters(opts ReadOptions) error {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid reference pattern %q", p)
		}
	}
	return nil
}

