// Package report folds attribution records into the ordered, deduplicated
// commit → tag → author report tree and defines its traversal contract.
package report

import (
	"github.com/todotree-dev/todotree/internal/gitrepo"
)

// Leaf is one reported marker occurrence.
type Leaf struct {
	Path string
	Line int
	Text string
	Tags []string
}

// AuthorGroup holds the leaves attributed to one author identity.
type AuthorGroup struct {
	Author string
	Leaves []Leaf
}

// TagGroup nests authors under the commit's resolved nearest tag.
// Tag is nil for the untagged sentinel group, which always sorts last.
type TagGroup struct {
	Tag     *gitrepo.Tag
	Authors []AuthorGroup
}

// CommitGroup is the outermost report level, keyed by owning commit.
type CommitGroup struct {
	Commit      gitrepo.Commit
	Uncommitted bool
	Tags        []TagGroup
}

// Tree is the completed report. Child ordering at every level is fixed by
// Build and is the traversal order; renderers must not re-sort.
type Tree struct {
	Commits []CommitGroup
}

// Empty reports whether the tree holds no leaves at all.
func (t *Tree) Empty() bool {
	return len(t.Commits) == 0
}

// Visitor receives tree nodes in traversal order.
type Visitor interface {
	Commit(CommitGroup)
	Tag(TagGroup)
	Author(AuthorGroup)
	Leaf(Leaf)
}

// Walk traverses the tree depth-first in the stored order:
// CommitGroup → TagGroup → AuthorGroup → leaves.
func (t *Tree) Walk(v Visitor) {
	for _, cg := range t.Commits {
		v.Commit(cg)
		for _, tg := range cg.Tags {
			v.Tag(tg)
			for _, ag := range tg.Authors {
				v.Author(ag)
				for _, leaf := range ag.Leaves {
					v.Leaf(leaf)
				}
			}
		}
	}
}
