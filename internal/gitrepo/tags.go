package gitrepo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// NearestTag resolves the nearest tagged ancestor-or-self commit for the
// given commit, walking the full ancestry breadth-first. Ties at the same
// distance are broken by tag name lexical order. Returns nil when no
// reachable commit carries a tag.
func (r *Repo) NearestTag(commitSHA string) (*Tag, error) {
	index, err := r.tagsByCommit()
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, nil
	}

	start := plumbing.NewHash(commitSHA)
	visited := map[plumbing.Hash]bool{start: true}
	level := []plumbing.Hash{start}

	for depth := 0; len(level) > 0; depth++ {
		// Collect every tag found at this depth before deciding, so the
		// lexical tie-break sees all equal-distance candidates.
		var names []string
		targets := make(map[string]plumbing.Hash)
		for _, h := range level {
			for _, name := range index[h] {
				names = append(names, name)
				targets[name] = h
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			target := targets[names[0]]
			return &Tag{
				Name:      names[0],
				TargetSHA: target.String(),
				Distance:  depth,
			}, nil
		}

		var next []plumbing.Hash
		for _, h := range level {
			obj, err := r.repo.CommitObject(h)
			if err != nil {
				if errors.Is(err, plumbing.ErrObjectNotFound) {
					continue
				}
				return nil, fmt.Errorf("get commit %s: %w", h, err)
			}
			for _, parent := range obj.ParentHashes {
				if !visited[parent] {
					visited[parent] = true
					next = append(next, parent)
				}
			}
		}
		level = next
	}

	return nil, nil
}

// tagsByCommit builds the commit-to-tag-names index once per Repo. Annotated
// tags are peeled to their target commit; lightweight tags point directly.
func (r *Repo) tagsByCommit() (map[plumbing.Hash][]string, error) {
	r.tagsOnce.Do(func() {
		index := make(map[plumbing.Hash][]string)

		tagIter, err := r.repo.Tags()
		if err != nil {
			r.tagsErr = fmt.Errorf("get tags: %w", err)
			return
		}
		defer tagIter.Close()

		r.tagsErr = tagIter.ForEach(func(ref *plumbing.Reference) error {
			target := ref.Hash()
			if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
				// Annotated tag: only commit targets count.
				if tagObj.TargetType != plumbing.CommitObject {
					return nil
				}
				target = tagObj.Target
			}
			index[target] = append(index[target], ref.Name().Short())
			return nil
		})
		if r.tagsErr != nil {
			return
		}

		for _, names := range index {
			sort.Strings(names)
		}
		r.tagIndex = index
	})

	return r.tagIndex, r.tagsErr
}
