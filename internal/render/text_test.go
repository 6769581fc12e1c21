package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todotree-dev/todotree/internal/gitrepo"
	"github.com/todotree-dev/todotree/internal/report"
)

func sampleTree(when time.Time) *report.Tree {
	return &report.Tree{
		Commits: []report.CommitGroup{
			{
				Commit: gitrepo.Commit{
					SHA:        "abcdef0123456789",
					AuthorName: "Alice",
					When:       when,
					Summary:    "add parser",
				},
				Tags: []report.TagGroup{
					{
						Tag: &gitrepo.Tag{Name: "v1.2.0", Distance: 1},
						Authors: []report.AuthorGroup{
							{
								Author: "Alice",
								Leaves: []report.Leaf{
									{Path: "pkg/parse.go", Line: 10, Text: "// TODO: handle EOF", Tags: []string{"parser"}},
								},
							},
						},
					},
					{
						Authors: []report.AuthorGroup{
							{
								Author: "Bob",
								Leaves: []report.Leaf{
									{Path: "main.go", Line: 3, Text: "# todo cleanup"},
								},
							},
						},
					},
				},
			},
		},
	}
}

func renderText(t *testing.T, tree *report.Tree) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, Text(&sb, tree, Options{NoColor: true}))
	return sb.String()
}

func TestTextEmptyTree(t *testing.T) {
	out := renderText(t, &report.Tree{})
	assert.Equal(t, "✅ No TODOs found.\n", out)
}

func TestTextReportShape(t *testing.T) {
	when := time.Now().Add(-48 * time.Hour)
	out := renderText(t, sampleTree(when))

	// Commit heading: short hash, humanized time, summary.
	assert.Contains(t, out, "[abcdef0/2 days ago] add parser")

	// Tag and author glyphs.
	assert.Contains(t, out, "🏷️  v1.2.0")
	assert.Contains(t, out, "👤 Alice")
	assert.Contains(t, out, "👤 Bob")

	// Leaves with annotation tags appended.
	assert.Contains(t, out, "pkg/parse.go:10 - // TODO: handle EOF [parser]")
	assert.Contains(t, out, "main.go:3 - # todo cleanup")

	// Tagged group renders before the untagged authors.
	assert.Less(t, strings.Index(out, "v1.2.0"), strings.Index(out, "Bob"))
}

func TestTextUncommittedLabel(t *testing.T) {
	tree := &report.Tree{
		Commits: []report.CommitGroup{
			{
				Uncommitted: true,
				Commit:      gitrepo.Commit{SHA: "0000000000000000000000000000000000000000"},
				Tags: []report.TagGroup{
					{
						Authors: []report.AuthorGroup{
							{Author: "uncommitted", Leaves: []report.Leaf{{Path: "wip.go", Line: 1, Text: "// todo soon"}}},
						},
					},
				},
			},
		},
	}

	out := renderText(t, tree)
	assert.Contains(t, out, "[uncommitted]")
	assert.Contains(t, out, "wip.go:1 - // todo soon")
}

func TestHighlighterColorsToken(t *testing.T) {
	highlight := newHighlighter(Options{})
	got := highlight("// TODO: fix")
	// The token is wrapped; the rest of the line is untouched.
	assert.Contains(t, got, "TODO")
	assert.True(t, strings.HasSuffix(got, ": fix"))

	plain := newHighlighter(Options{NoColor: true})
	assert.Equal(t, "// TODO: fix", plain("// TODO: fix"))
}
