package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// CLIReader reads the commit graph and references by running the git executable.
type CLIReader struct {
	opts ReadOptions
}

// NewCLIReader checks that opts.RepoPath is inside a git repository.
func NewCLIReader(opts ReadOptions) (*CLIReader, error) {
	if err := validateFilters(opts); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(opts.RepoPath)
	if err != nil {
		return nil, err
	}
	opts.RepoPath = abs

	r := &CLIReader{opts: opts}
	if _, err := r.run(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("open repository %s: %w", abs, err)
	}
	return r, nil
}

// Commits walks every commit reachable from HEAD using git log.
func (r *CLIReader) Commits(ctx context.Context) ([]RawCommit, error) {
	if _, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD^{commit}"); err != nil {
		return nil, ErrNoHead
	}

	order, err := ParseTraversalOrder(string(r.opts.Order))
	if err != nil {
		return nil, err
	}

	// Each record starts with 0x1e (record separator) followed by NUL-separated
	// fields. The raw body comes last since it may contain anything but NUL.
	// tformat terminates every record, including the last, with one newline.
	const format = "%x1e%H%x00%P%x00%ct%x00%an%x00%B"

	args := []string{"log", "--no-color", "--pretty=tformat:" + format}
	args = append(args, cliOrderArgs(order)...)
	args = append(args, "HEAD")

	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}

	return parseGitLog(out, r.skip), nil
}

// References lists every reference using git for-each-ref, sorted by name.
func (r *CLIReader) References(ctx context.Context) ([]RawReference, error) {
	out, err := r.run(ctx, "for-each-ref", "--format=%(refname)%00%(objectname)%00%(symref)")
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	var refs []RawReference
	for _, ref := range parseForEachRef(out, r.skip) {
		if !matchesFilters(ref.Name, r.opts.Include, r.opts.Exclude) {
			continue
		}
		refs = append(refs, ref)
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (r *CLIReader) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", r.opts.RepoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func (r *CLIReader) skip(kind SkipKind, id string, err error) {
	if r.opts.OnSkip != nil {
		r.opts.OnSkip(kind, id, err)
	}
}

// cliOrderArgs maps a traversal order onto git log ordering flags.
// git has no breadth-first walk, so bfs falls back to git's default order.
func cliOrderArgs(o TraversalOrder) []string {
	switch o {
	case OrderCommitterTime:
		return []string{"--date-order"}
	case OrderDFS:
		return []string{"--topo-order"}
	default:
		return nil
	}
}

// parseGitLog splits git log tformat output into commits. The single
// terminating newline git appends to each record is removed; the message
// itself is kept verbatim. Malformed records are reported through skip and dropped.
func parseGitLog(out []byte, skip SkipFunc) []RawCommit {
	records := bytes.Split(out, []byte{0x1e})
	results := make([]RawCommit, 0, len(records))

	for _, rec := range records {
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}

		fields := bytes.SplitN(rec, []byte{0x00}, 5)
		if len(fields) < 5 {
			skip(SkipCommit, firstField(rec), fmt.Errorf("unexpected git log record format"))
			continue
		}

		sha := strings.TrimSpace(string(fields[0]))
		when, err := strconv.ParseInt(strings.TrimSpace(string(fields[2])), 10, 64)
		if err != nil {
			skip(SkipCommit, sha, fmt.Errorf("parse committer date: %w", err))
			continue
		}

		results = append(results, RawCommit{
			ID:         sha,
			AuthorName: string(fields[3]),
			When:       when,
			Message:    strings.TrimSuffix(string(fields[4]), "\n"),
			Parents:    strings.Fields(string(fields[1])),
		})
	}

	return results
}

// parseForEachRef parses "refname NUL objectname NUL symref" lines.
func parseForEachRef(out []byte, skip SkipFunc) []RawReference {
	var refs []RawReference

	for _, line := range bytes.Split(out, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}

		fields := bytes.Split(line, []byte{0x00})
		if len(fields) != 3 || len(fields[0]) == 0 {
			skip(SkipReference, firstField(line), fmt.Errorf("unexpected git for-each-ref line format"))
			continue
		}

		ref := RawReference{
			Name:   string(fields[0]),
			Target: string(fields[1]),
			Kind:   ReferenceKindDirect,
		}
		// for-each-ref prints the resolved object for symbolic refs; only the kind is kept.
		if len(fields[2]) > 0 {
			ref.Kind = ReferenceKindSymbolic
			ref.Target = ""
		}
		refs = append(refs, ref)
	}

	return refs
}

func firstField(rec []byte) string {
	if idx := bytes.IndexByte(rec, 0); idx != -1 {
		rec = rec[:idx]
	}
	return strings.TrimSpace(string(rec))
}
