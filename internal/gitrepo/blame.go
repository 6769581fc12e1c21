package gitrepo

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// BlameLine attributes one line of a file at a revision. The slice returned
// by BlameFile is aligned so index i holds line i+1.
type BlameLine struct {
	SHA  string
	Text string
}

// BlameFile computes whole-file blame for path at the given commit. The call
// traverses the file's full history; callers are expected to invoke it at
// most once per (commit, path) pair and reuse the result for every line.
func (r *Repo) BlameFile(commitSHA, path string) ([]BlameLine, error) {
	obj, err := r.repo.CommitObject(plumbing.NewHash(commitSHA))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("commit %s: %w", commitSHA, ErrNotFound)
		}
		return nil, fmt.Errorf("get commit %s: %w", commitSHA, err)
	}

	result, err := gogit.Blame(obj, path)
	if err != nil {
		return nil, fmt.Errorf("blame %q at %s: %w", path, commitSHA, err)
	}

	lines := make([]BlameLine, len(result.Lines))
	for i, line := range result.Lines {
		lines[i] = BlameLine{
			SHA:  line.Hash.String(),
			Text: line.Text,
		}
	}

	return lines, nil
}
