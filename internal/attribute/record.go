// Package attribute resolves marker matches to the commits that last
// modified their lines, producing one attribution record per match.
package attribute

import (
	"github.com/todotree-dev/todotree/internal/gitrepo"
)

// UncommittedSHA is the pseudo-commit id assigned to lines that exist only
// in the working tree. Policy: such lines are reported under this sentinel
// rather than dropped, so a dirty tree still shows every marker.
const UncommittedSHA = "0000000000000000000000000000000000000000"

// Uncommitted is the sentinel pseudo-commit for never-committed lines. Its
// zero timestamp keeps report output identical across runs; the aggregator
// orders the sentinel group ahead of real commits.
var Uncommitted = gitrepo.Commit{
	SHA:        UncommittedSHA,
	AuthorName: "uncommitted",
	Summary:    "uncommitted changes",
}

// Record is one fully resolved marker attribution: where the marker sits,
// what it says, and which commit (and nearest tag, if any) owns it.
// Records are immutable once created.
type Record struct {
	Path   string
	Line   int
	Text   string
	Tags   []string
	Commit gitrepo.Commit
	Tag    *gitrepo.Tag
}

// IsUncommitted reports whether the record carries the sentinel attribution.
func (r Record) IsUncommitted() bool {
	return r.Commit.SHA == UncommittedSHA
}
