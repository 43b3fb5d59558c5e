package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
)

// testRepo is a small history with a merge:
//
//	A --- B --- M   (HEAD, branch)
//	 \         /
//	  --- C ---
type testRepo struct {
	dir    string
	repo   *gogit.Repository
	branch plumbing.ReferenceName
	a, b   plumbing.Hash
	c, m   plumbing.Hash
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	commit := func(msg, author string, parents ...plumbing.Hash) plumbing.Hash {
		t.Helper()
		n++
		full := filepath.Join(dir, "file.txt")
		if err := os.WriteFile(full, []byte(msg+"\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := wt.Add("file.txt"); err != nil {
			t.Fatalf("Add: %v", err)
		}
		when := base.Add(time.Duration(n) * time.Hour)
		h, err := wt.Commit(msg, &gogit.CommitOptions{
			Author:    &object.Signature{Name: author, Email: author + "@example.com", When: when},
			Committer: &object.Signature{Name: author, Email: author + "@example.com", When: when},
			Parents:   parents,
		})
		if err != nil {
			t.Fatalf("Commit(%s): %v", msg, err)
		}
		return h
	}

	tr := &testRepo{dir: dir, repo: repo}
	tr.a = commit("A", "alice")
	tr.b = commit("B", "bob")
	tr.c = commit("C", "carol", tr.a)
	tr.m = commit("M", "alice", tr.b, tr.c)

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	tr.branch = head.Name()
	return tr
}

func TestHistoryReader_Commits(t *testing.T) {
	tr := newTestRepo(t)

	reader, err := NewHistoryReader(ReadOptions{RepoPath: tr.dir})
	if err != nil {
		t.Fatalf("NewHistoryReader: %v", err)
	}

	commits, err := reader.Commits(context.Background())
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if len(commits) != 4 {
		t.Fatalf("commits = %d, expected 4", len(commits))
	}

	if commits[0].ID != tr.m.String() {
		t.Errorf("first commit = %s, expected merge %s", commits[0].ID, tr.m)
	}
	if commits[len(commits)-1].ID != tr.a.String() {
		t.Errorf("last commit = %s, expected root %s", commits[len(commits)-1].ID, tr.a)
	}

	byID := map[string]RawCommit{}
	edges := 0
	for _, c := range commits {
		byID[c.ID] = c
		edges += len(c.Parents)
	}
	if edges != 4 {
		t.Errorf("parent edges = %d, expected 4", edges)
	}

	merge := byID[tr.m.String()]
	if len(merge.Parents) != 2 || merge.Parents[0] != tr.b.String() || merge.Parents[1] != tr.c.String() {
		t.Errorf("merge parents = %v, expected [%s %s]", merge.Parents, tr.b, tr.c)
	}
	root := byID[tr.a.String()]
	if len(root.Parents) != 0 {
		t.Errorf("root parents = %v, expected none", root.Parents)
	}
	if root.AuthorName != "alice" || root.Message != "A" {
		t.Errorf("root = %+v", root)
	}
	if root.When != time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC).Unix() {
		t.Errorf("root When = %d", root.When)
	}
}

func TestHistoryReader_Commits_DescendantsFirst(t *testing.T) {
	tr := newTestRepo(t)

	for _, order := range []TraversalOrder{OrderCommitterTime, OrderDFS, OrderBFS} {
		t.Run(string(order), func(t *testing.T) {
			reader := NewHistoryReaderFromRepository(tr.repo, ReadOptions{Order: order})
			commits, err := reader.Commits(context.Background())
			if err != nil {
				t.Fatalf("Commits: %v", err)
			}
			if len(commits) != 4 {
				t.Fatalf("commits = %d, expected 4", len(commits))
			}
			if commits[0].ID != tr.m.String() {
				t.Errorf("first commit = %s, expected HEAD %s", commits[0].ID, tr.m)
			}
		})
	}
}

func TestHistoryReader_References(t *testing.T) {
	tr := newTestRepo(t)

	if _, err := tr.repo.CreateTag("v1", tr.a, nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := tr.repo.Storer.SetReference(plumbing.NewSymbolicReference("refs/remotes/origin/HEAD", tr.branch)); err != nil {
		t.Fatalf("SetReference: %v", err)
	}
	if err := tr.repo.Storer.SetReference(plumbing.NewSymbolicReference("refs/heads/dangling", "refs/heads/missing")); err != nil {
		t.Fatalf("SetReference: %v", err)
	}

	reader := NewHistoryReaderFromRepository(tr.repo, ReadOptions{})
	refs, err := reader.References(context.Background())
	if err != nil {
		t.Fatalf("References: %v", err)
	}

	expected := []RawReference{
		{Name: "refs/heads/dangling", Target: "", Kind: ReferenceKindSymbolic},
		{Name: tr.branch.String(), Target: tr.m.String(), Kind: ReferenceKindDirect},
		{Name: "refs/remotes/origin/HEAD", Target: "", Kind: ReferenceKindSymbolic},
		{Name: "refs/tags/v1", Target: tr.a.String(), Kind: ReferenceKindDirect},
	}
	if len(refs) != len(expected) {
		t.Fatalf("references = %+v, expected %+v", refs, expected)
	}
	for i := range expected {
		if refs[i] != expected[i] {
			t.Errorf("refs[%d] = %+v, expected %+v", i, refs[i], expected[i])
		}
	}
}

func TestHistoryReader_References_Filters(t *testing.T) {
	tr := newTestRepo(t)
	if _, err := tr.repo.CreateTag("v1", tr.a, nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	reader := NewHistoryReaderFromRepository(tr.repo, ReadOptions{Include: []string{"refs/tags/**"}})
	refs, err := reader.References(context.Background())
	if err != nil {
		t.Fatalf("References: %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "refs/tags/v1" {
		t.Fatalf("references = %+v, expected only refs/tags/v1", refs)
	}
}

func TestHistoryReader_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := gogit.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}

	reader, err := NewHistoryReader(ReadOptions{RepoPath: dir})
	if err != nil {
		t.Fatalf("NewHistoryReader: %v", err)
	}
	if _, err := reader.Commits(context.Background()); !errors.Is(err, ErrNoHead) {
		t.Fatalf("Commits err = %v, expected ErrNoHead", err)
	}
}

func TestHistoryReader_DetectsDotGitFromSubdirectory(t *testing.T) {
	tr := newTestRepo(t)
	sub := filepath.Join(tr.dir, "nested", "dir")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	reader, err := NewHistoryReader(ReadOptions{RepoPath: sub})
	if err != nil {
		t.Fatalf("NewHistoryReader: %v", err)
	}
	commits, err := reader.Commits(context.Background())
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if len(commits) != 4 {
		t.Fatalf("commits = %d, expected 4", len(commits))
	}
}

func TestNewHistoryReader_Errors(t *testing.T) {
	t.Run("NotARepository", func(t *testing.T) {
		if _, err := NewHistoryReader(ReadOptions{RepoPath: t.TempDir()}); err == nil {
			t.Fatalf("expected error, got nil")
		}
	})

	t.Run("InvalidPattern", func(t *testing.T) {
		tr := newTestRepo(t)
		if _, err := NewHistoryReader(ReadOptions{RepoPath: tr.dir, Include: []string{"refs/[heads"}}); err == nil {
			t.Fatalf("expected error, got nil")
		}
	})
}

func TestCLIReader_MatchesNative(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
	tr := newTestRepo(t)

	reader, err := NewCLIReader(ReadOptions{RepoPath: tr.dir})
	if err != nil {
		t.Fatalf("NewCLIReader: %v", err)
	}

	commits, err := reader.Commits(context.Background())
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if len(commits) != 4 {
		t.Fatalf("commits = %d, expected 4", len(commits))
	}
	if commits[0].ID != tr.m.String() || len(commits[0].Parents) != 2 {
		t.Errorf("first commit = %+v, expected merge %s", commits[0], tr.m)
	}

	refs, err := reader.References(context.Background())
	if err != nil {
		t.Fatalf("References: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("references = %+v, expected 1", refs)
	}
	if refs[0].Name != tr.branch.String() || refs[0].Target != tr.m.String() || refs[0].Kind != ReferenceKindDirect {
		t.Errorf("refs[0] = %+v", refs[0])
	}
}

// gitExec runs the git executable in dir with a fixed identity.
func gitExec(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=alice", "GIT_AUTHOR_EMAIL=alice@example.com",
		"GIT_COMMITTER_NAME=alice", "GIT_COMMITTER_EMAIL=alice@example.com",
		"GIT_CONFIG_NOSYSTEM=1", "HOME="+t.TempDir())
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestCLIReader_MessagesMatchNative(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
	dir := t.TempDir()
	gitExec(t, dir, "init", "--quiet", "--initial-branch=main")
	gitExec(t, dir, "commit", "--quiet", "--allow-empty", "-m", "init")
	gitExec(t, dir, "commit", "--quiet", "--allow-empty", "-m", "second", "-m", "body paragraph")
	gitExec(t, dir, "symbolic-ref", "refs/remotes/origin/HEAD", "refs/heads/main")

	native, err := NewHistoryReader(ReadOptions{RepoPath: dir})
	if err != nil {
		t.Fatalf("NewHistoryReader: %v", err)
	}
	cli, err := NewCLIReader(ReadOptions{RepoPath: dir})
	if err != nil {
		t.Fatalf("NewCLIReader: %v", err)
	}

	want, err := native.Commits(context.Background())
	if err != nil {
		t.Fatalf("native Commits: %v", err)
	}
	got, err := cli.Commits(context.Background())
	if err != nil {
		t.Fatalf("cli Commits: %v", err)
	}
	if len(got) != 2 || len(want) != 2 {
		t.Fatalf("commits: cli=%d native=%d, expected 2", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Message != want[i].Message {
			t.Errorf("commit %d: cli=%s %q, native=%s %q", i, got[i].ID, got[i].Message, want[i].ID, want[i].Message)
		}
	}
	if want[1].Message != "init\n" {
		t.Errorf("root message = %q, expected %q", want[1].Message, "init\n")
	}

	nativeRefs, err := native.References(context.Background())
	if err != nil {
		t.Fatalf("native References: %v", err)
	}
	cliRefs, err := cli.References(context.Background())
	if err != nil {
		t.Fatalf("cli References: %v", err)
	}
	if len(nativeRefs) != len(cliRefs) {
		t.Fatalf("references: cli=%+v native=%+v", cliRefs, nativeRefs)
	}
	for i := range nativeRefs {
		if nativeRefs[i] != cliRefs[i] {
			t.Errorf("refs[%d]: cli=%+v native=%+v", i, cliRefs[i], nativeRefs[i])
		}
	}
}

// flakyStorer serves the target object once, then reports it missing.
type flakyStorer struct {
	storage.Storer
	target plumbing.Hash
	served int
}

func (s *flakyStorer) EncodedObject(t plumbing.ObjectType, h plumbing.Hash) (plumbing.EncodedObject, error) {
	if h == s.target {
		s.served++
		if s.served > 1 {
			return nil, plumbing.ErrObjectNotFound
		}
	}
	return s.Storer.EncodedObject(t, h)
}

func TestHistoryReader_Commits_SkipsUnresolvableCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var hashes []plumbing.Hash
	for i, msg := range []string{"one", "two", "three"} {
		sig := &object.Signature{Name: "alice", Email: "alice@example.com", When: base.Add(time.Duration(i) * time.Hour)}
		h, err := wt.Commit(msg, &gogit.CommitOptions{AllowEmptyCommits: true, Author: sig, Committer: sig})
		if err != nil {
			t.Fatalf("Commit(%s): %v", msg, err)
		}
		hashes = append(hashes, h)
	}

	// The walk reads "two" once as the parent of HEAD; the second lookup fails.
	st := &flakyStorer{Storer: repo.Storer, target: hashes[1]}
	flaky, err := gogit.Open(st, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var skips skipRecorder
	reader := NewHistoryReaderFromRepository(flaky, ReadOptions{OnSkip: skips.record})
	commits, err := reader.Commits(context.Background())
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}

	if len(commits) != 2 || commits[0].ID != hashes[2].String() || commits[1].ID != hashes[0].String() {
		t.Fatalf("commits = %+v, expected three and one", commits)
	}
	if len(skips.ids) != 1 || skips.ids[0] != hashes[1].String() || skips.kinds[0] != SkipCommit {
		t.Errorf("skips = %+v, expected %s", skips, hashes[1])
	}
}
