package gitrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture wraps a throwaway on-disk repository built commit by commit.
type fixture struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
	seq  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &fixture{t: t, dir: dir, repo: repo, wt: wt}
}

func (f *fixture) write(path, content string) {
	f.t.Helper()
	full := filepath.Join(f.dir, filepath.FromSlash(path))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(f.t, os.WriteFile(full, []byte(content), 0o600))
}

// commit stages everything and commits with a fixed, strictly increasing
// timestamp so ordering assertions are stable.
func (f *fixture) commit(author, msg string) string {
	f.t.Helper()
	f.seq++

	require.NoError(f.t, f.wt.AddWithOptions(&gogit.AddOptions{All: true}))

	sig := &object.Signature{
		Name:  author,
		Email: "dev@example.com",
		When:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Hour),
	}
	hash, err := f.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(f.t, err)
	return hash.String()
}

func (f *fixture) tag(name, sha string) {
	f.t.Helper()
	_, err := f.repo.CreateTag(name, plumbing.NewHash(sha), nil)
	require.NoError(f.t, err)
}

func (f *fixture) annotatedTag(name, sha string) {
	f.t.Helper()
	_, err := f.repo.CreateTag(name, plumbing.NewHash(sha), &gogit.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  "Tagger",
			Email: "tagger@example.com",
			When:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		Message: name,
	})
	require.NoError(f.t, err)
}

func (f *fixture) open() *Repo {
	f.t.Helper()
	repo, err := Open(f.dir)
	require.NoError(f.t, err)
	return repo
}

func TestOpenFailsOutsideRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}

func TestOpenDetectsRootFromSubdirectory(t *testing.T) {
	f := newFixture(t)
	f.write("sub/dir/file.txt", "content\n")
	f.commit("Alice", "init")

	repo, err := Open(filepath.Join(f.dir, "sub", "dir"))
	require.NoError(t, err)
	assert.Equal(t, f.dir, repo.Root())
}

func TestResolveRevision(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "hello\n")
	sha := f.commit("Alice", "init commit")

	repo := f.open()

	head, err := repo.ResolveRevision("HEAD")
	require.NoError(t, err)
	assert.Equal(t, sha, head.SHA)
	assert.Equal(t, "Alice", head.AuthorName)
	assert.Equal(t, "init commit", head.Summary)

	_, err = repo.ResolveRevision("no-such-branch")
	require.Error(t, err)
}

func TestCommitSummaryIsFirstLine(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "x\n")
	sha := f.commit("Alice", "short summary\n\nlong body\nmore body\n")

	repo := f.open()
	c, err := repo.Commit(sha)
	require.NoError(t, err)
	assert.Equal(t, "short summary", c.Summary)
	assert.Equal(t, sha[:7], c.ShortSHA())
}

func TestTrackedFilesAndContent(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "aaa\n")
	f.write("nested/b.txt", "bbb\n")
	sha := f.commit("Alice", "init")

	repo := f.open()

	files, err := repo.TrackedFiles(sha)
	require.NoError(t, err)

	paths := make(map[string]bool)
	for _, entry := range files {
		paths[entry.Path] = true
	}
	assert.True(t, paths["a.txt"])
	assert.True(t, paths["nested/b.txt"])

	content, err := repo.FileContent(sha, "nested/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "bbb\n", string(content))

	_, err = repo.FileContent(sha, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorktreeFileReadsUncommittedContent(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "committed\n")
	f.commit("Alice", "init")
	f.write("a.txt", "committed\ndirty\n")

	repo := f.open()

	content, err := repo.WorktreeFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "committed\ndirty\n", string(content))

	_, err = repo.WorktreeFile("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlameFilePerLineAttribution(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "first\nsecond\n")
	c1 := f.commit("Alice", "add two lines")
	f.write("a.txt", "first\nsecond\nthird\n")
	c2 := f.commit("Bob", "append third")

	repo := f.open()

	lines, err := repo.BlameFile(c2, "a.txt")
	require.NoError(t, err)
	require.Len(t, lines, 3)

	// Lines untouched since the first commit keep attributing to it; the
	// appended line belongs to the second.
	assert.Equal(t, c1, lines[0].SHA)
	assert.Equal(t, c1, lines[1].SHA)
	assert.Equal(t, c2, lines[2].SHA)
	assert.Equal(t, "third", lines[2].Text)
}

func TestBlameFileRootCommit(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "only line\n")
	root := f.commit("Alice", "root")

	repo := f.open()

	lines, err := repo.BlameFile(root, "a.txt")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, root, lines[0].SHA)
}

func TestNearestTagSelf(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "x\n")
	sha := f.commit("Alice", "init")
	f.tag("v1.0.0", sha)

	repo := f.open()

	tag, err := repo.NearestTag(sha)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "v1.0.0", tag.Name)
	assert.Equal(t, sha, tag.TargetSHA)
	assert.Equal(t, 0, tag.Distance)
}

func TestNearestTagAncestor(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "x\n")
	tagged := f.commit("Alice", "tagged")
	f.tag("v1", tagged)
	f.write("a.txt", "x\ny\n")
	child := f.commit("Alice", "untagged child")

	repo := f.open()

	tag, err := repo.NearestTag(child)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "v1", tag.Name)
	assert.Equal(t, 1, tag.Distance)
}

func TestNearestTagPrefersCloser(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "1\n")
	far := f.commit("Alice", "far")
	f.tag("v1", far)
	f.write("a.txt", "1\n2\n")
	near := f.commit("Alice", "near")
	f.tag("v2", near)
	f.write("a.txt", "1\n2\n3\n")
	tip := f.commit("Alice", "tip")

	repo := f.open()

	tag, err := repo.NearestTag(tip)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "v2", tag.Name)
	assert.Equal(t, 1, tag.Distance)
}

func TestNearestTagLexicalTieBreak(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "x\n")
	sha := f.commit("Alice", "init")
	f.tag("zebra", sha)
	f.tag("alpha", sha)

	repo := f.open()

	tag, err := repo.NearestTag(sha)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "alpha", tag.Name)
}

func TestNearestTagAnnotatedPeelsToCommit(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "x\n")
	sha := f.commit("Alice", "init")
	f.annotatedTag("v2.0.0", sha)

	repo := f.open()

	tag, err := repo.NearestTag(sha)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "v2.0.0", tag.Name)
	assert.Equal(t, sha, tag.TargetSHA)
}

func TestNearestTagNoneReachable(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "x\n")
	sha := f.commit("Alice", "init")

	repo := f.open()

	tag, err := repo.NearestTag(sha)
	require.NoError(t, err)
	assert.Nil(t, tag)
}
