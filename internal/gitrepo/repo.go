// Package gitrepo provides read-only access to a local git repository's
// history: tracked files, blob content, line-level blame and tag reachability.
// It is the only package that touches version-control internals.
package gitrepo

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotFound indicates the requested object is absent from history.
var ErrNotFound = errors.New("not found in history")

// Commit identifies one commit in the scanned repository's history.
// Instances are immutable once returned.
type Commit struct {
	SHA         string
	AuthorName  string
	AuthorEmail string
	When        time.Time
	Summary     string
}

// ShortSHA returns the abbreviated commit id used in report labels.
func (c Commit) ShortSHA() string {
	if len(c.SHA) < 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// Tag names a commit reachable from the one it was resolved for.
// Distance is the number of intervening commits (0 for self).
type Tag struct {
	Name      string
	TargetSHA string
	Distance  int
}

// Repo is a read-only view over a local git repository.
type Repo struct {
	repo *gogit.Repository
	root string

	mu      sync.Mutex
	commits map[string]Commit

	tagsOnce sync.Once
	tagsErr  error
	tagIndex map[plumbing.Hash][]string
}

// Open opens the repository containing path, walking up to find the .git
// directory the way the git CLI does.
func Open(path string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open repository at %q: %w", path, err)
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repo{
		repo:    repo,
		root:    root,
		commits: make(map[string]Commit),
	}, nil
}

// Root returns the absolute path of the worktree root.
func (r *Repo) Root() string {
	return r.root
}

// ResolveRevision resolves a revision string ("HEAD", a branch, a tag, a SHA
// prefix) to the commit it names.
func (r *Repo) ResolveRevision(rev string) (Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return Commit{}, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	return r.Commit(hash.String())
}

// Commit returns the metadata for a commit SHA, caching lookups for the
// lifetime of the Repo.
func (r *Repo) Commit(sha string) (Commit, error) {
	r.mu.Lock()
	if c, ok := r.commits[sha]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	obj, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return Commit{}, fmt.Errorf("commit %s: %w", sha, ErrNotFound)
		}
		return Commit{}, fmt.Errorf("get commit %s: %w", sha, err)
	}

	c := commitFromObject(obj)
	r.mu.Lock()
	r.commits[sha] = c
	r.mu.Unlock()
	return c, nil
}

func commitFromObject(obj *object.Commit) Commit {
	summary := obj.Message
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = summary[:i]
	}
	return Commit{
		SHA:         obj.Hash.String(),
		AuthorName:  obj.Author.Name,
		AuthorEmail: obj.Author.Email,
		When:        obj.Author.When.UTC(),
		Summary:     strings.TrimSpace(summary),
	}
}
