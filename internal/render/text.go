// Package render turns a report tree into user-facing output. It is pure
// presentation: all ordering comes from the tree itself.
package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/todotree-dev/todotree/internal/report"
)

// Options configures rendering.
type Options struct {
	// Markers are the tokens to highlight in leaf text. Defaults to ["todo"].
	Markers []string

	// NoColor disables ANSI colors regardless of TTY detection.
	NoColor bool
}

// Text writes the tree-glyph report to w, one block per commit group.
func Text(w io.Writer, t *report.Tree, opts Options) error {
	if t.Empty() {
		_, err := fmt.Fprintln(w, "✅ No TODOs found.")
		return err
	}

	highlight := newHighlighter(opts)

	for _, cg := range t.Commits {
		block := tree.Root(commitLabel(cg))

		for _, tg := range cg.Tags {
			// Untagged authors attach directly under the commit.
			parent := block
			if tg.Tag != nil {
				tagged := tree.Root("🏷️  " + tg.Tag.Name)
				block.Child(tagged)
				parent = tagged
			}

			for _, ag := range tg.Authors {
				authorNode := tree.Root("👤 " + ag.Author)
				parent.Child(authorNode)
				for _, leaf := range ag.Leaves {
					authorNode.Child(leafLabel(leaf, highlight))
				}
			}
		}

		if _, err := fmt.Fprintln(w, block.String()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}

// commitLabel renders the group heading: short hash plus humanized commit
// time, followed by the message summary.
func commitLabel(cg report.CommitGroup) string {
	if cg.Uncommitted {
		return "[uncommitted]"
	}

	label := fmt.Sprintf("[%s/%s]", cg.Commit.ShortSHA(), humanize.Time(cg.Commit.When))
	if cg.Commit.Summary != "" {
		label += " " + cg.Commit.Summary
	}
	return label
}

func leafLabel(leaf report.Leaf, highlight func(string) string) string {
	label := fmt.Sprintf("%s:%d - %s", leaf.Path, leaf.Line, highlight(leaf.Text))
	if len(leaf.Tags) > 0 {
		label += " [" + strings.Join(leaf.Tags, ", ") + "]"
	}
	return label
}

// newHighlighter colors marker tokens red within leaf text. fatih/color
// already degrades to plain text when stdout is not a terminal.
func newHighlighter(opts Options) func(string) string {
	if opts.NoColor {
		return func(s string) string { return s }
	}

	markers := opts.Markers
	if len(markers) == 0 {
		markers = []string{"todo"}
	}
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	pattern := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	red := color.New(color.FgRed)

	return func(s string) string {
		return pattern.ReplaceAllStringFunc(s, func(tok string) string {
			return red.Sprint(tok)
		})
	}
}
