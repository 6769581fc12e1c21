package report

import (
	"sort"

	"github.com/todotree-dev/todotree/internal/attribute"
	"github.com/todotree-dev/todotree/internal/gitrepo"
)

// untaggedKey is the sentinel map key for records with no reachable tag.
// Tag names cannot collide with it: git forbids refs ending in a slash.
const untaggedKey = "//untagged"

// Build folds an order-independent record set into the report tree.
//
// Ordering rules:
//   - CommitGroups descend by commit timestamp, ties by SHA lexical order;
//     the uncommitted sentinel group, if present, comes first.
//   - Tagged TagGroups precede the untagged group, ordered by resolution
//     distance then tag name.
//   - Authors are alphabetical within a TagGroup.
//   - Leaves order by path, then line. Duplicate (path, line) pairs within
//     one CommitGroup collapse to a single leaf.
//
// Groups with no leaves never appear.
func Build(records []attribute.Record) *Tree {
	type authorMap = map[string][]Leaf
	type tagMap = map[string]authorMap
	type leafKey struct {
		path string
		line int
	}

	commits := make(map[string]gitrepo.Commit)
	tagsByName := make(map[string]*gitrepo.Tag)
	grouped := make(map[string]tagMap)
	seen := make(map[string]map[leafKey]bool)

	for _, rec := range records {
		sha := rec.Commit.SHA
		commits[sha] = rec.Commit

		key := leafKey{path: rec.Path, line: rec.Line}
		if seen[sha] == nil {
			seen[sha] = make(map[leafKey]bool)
		}
		if seen[sha][key] {
			continue
		}
		seen[sha][key] = true

		tagKey := untaggedKey
		if rec.Tag != nil {
			tagKey = rec.Tag.Name
			tagsByName[tagKey] = rec.Tag
		}

		if grouped[sha] == nil {
			grouped[sha] = make(tagMap)
		}
		if grouped[sha][tagKey] == nil {
			grouped[sha][tagKey] = make(authorMap)
		}
		author := rec.Commit.AuthorName
		grouped[sha][tagKey][author] = append(grouped[sha][tagKey][author], Leaf{
			Path: rec.Path,
			Line: rec.Line,
			Text: rec.Text,
			Tags: rec.Tags,
		})
	}

	tree := &Tree{}
	for _, sha := range sortedCommitSHAs(commits) {
		cg := CommitGroup{
			Commit:      commits[sha],
			Uncommitted: sha == attribute.UncommittedSHA,
		}

		for _, tagKey := range sortedTagKeys(grouped[sha], tagsByName) {
			tg := TagGroup{Tag: tagsByName[tagKey]}

			byAuthor := grouped[sha][tagKey]
			for _, author := range sortedAuthors(byAuthor) {
				leaves := byAuthor[author]
				sort.Slice(leaves, func(i, j int) bool {
					if leaves[i].Path != leaves[j].Path {
						return leaves[i].Path < leaves[j].Path
					}
					return leaves[i].Line < leaves[j].Line
				})
				if len(leaves) == 0 {
					continue
				}
				tg.Authors = append(tg.Authors, AuthorGroup{
					Author: author,
					Leaves: leaves,
				})
			}

			if len(tg.Authors) > 0 {
				cg.Tags = append(cg.Tags, tg)
			}
		}

		if len(cg.Tags) > 0 {
			tree.Commits = append(tree.Commits, cg)
		}
	}

	return tree
}

// sortedCommitSHAs orders commits most recent first, ties broken by SHA.
// The uncommitted sentinel is newer than anything committed.
func sortedCommitSHAs(commits map[string]gitrepo.Commit) []string {
	shas := make([]string, 0, len(commits))
	for sha := range commits {
		shas = append(shas, sha)
	}
	sort.Slice(shas, func(i, j int) bool {
		a, b := commits[shas[i]], commits[shas[j]]
		if au, bu := a.SHA == attribute.UncommittedSHA, b.SHA == attribute.UncommittedSHA; au != bu {
			return au
		}
		if !a.When.Equal(b.When) {
			return a.When.After(b.When)
		}
		return a.SHA < b.SHA
	})
	return shas
}

// sortedTagKeys orders tagged groups by resolution distance then name, with
// the untagged sentinel last.
func sortedTagKeys(tags map[string]map[string][]Leaf, tagsByName map[string]*gitrepo.Tag) []string {
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := tagsByName[keys[i]], tagsByName[keys[j]]
		if (a == nil) != (b == nil) {
			return b == nil
		}
		if a == nil {
			return false
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Name < b.Name
	})
	return keys
}

func sortedAuthors(byAuthor map[string][]Leaf) []string {
	authors := make([]string, 0, len(byAuthor))
	for author := range byAuthor {
		authors = append(authors, author)
	}
	sort.Strings(authors)
	return authors
}
