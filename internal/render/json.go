package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/todotree-dev/todotree/internal/report"
)

type jsonLeaf struct {
	Path string   `json:"path"`
	Line int      `json:"line"`
	Text string   `json:"text"`
	Tags []string `json:"tags,omitempty"`
}

type jsonAuthor struct {
	Author string     `json:"author"`
	Items  []jsonLeaf `json:"items"`
}

type jsonTag struct {
	Tag      string       `json:"tag,omitempty"`
	Distance int          `json:"distance,omitempty"`
	Authors  []jsonAuthor `json:"authors"`
}

type jsonCommit struct {
	SHA         string     `json:"sha"`
	Author      string     `json:"author,omitempty"`
	Time        *time.Time `json:"time,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Uncommitted bool       `json:"uncommitted,omitempty"`
	Tags        []jsonTag  `json:"groups"`
}

// jsonBuilder accumulates the document through the tree's traversal
// contract, so the emitted order matches the text report exactly.
type jsonBuilder struct {
	commits []jsonCommit
}

func (b *jsonBuilder) Commit(cg report.CommitGroup) {
	jc := jsonCommit{
		SHA:         cg.Commit.SHA,
		Summary:     cg.Commit.Summary,
		Uncommitted: cg.Uncommitted,
	}
	if !cg.Uncommitted {
		jc.Author = cg.Commit.AuthorName
		when := cg.Commit.When
		jc.Time = &when
	}
	b.commits = append(b.commits, jc)
}

func (b *jsonBuilder) Tag(tg report.TagGroup) {
	jt := jsonTag{}
	if tg.Tag != nil {
		jt.Tag = tg.Tag.Name
		jt.Distance = tg.Tag.Distance
	}
	cur := &b.commits[len(b.commits)-1]
	cur.Tags = append(cur.Tags, jt)
}

func (b *jsonBuilder) Author(ag report.AuthorGroup) {
	cur := &b.commits[len(b.commits)-1]
	tags := cur.Tags
	tags[len(tags)-1].Authors = append(tags[len(tags)-1].Authors, jsonAuthor{
		Author: ag.Author,
	})
}

func (b *jsonBuilder) Leaf(leaf report.Leaf) {
	cur := &b.commits[len(b.commits)-1]
	tag := &cur.Tags[len(cur.Tags)-1]
	author := &tag.Authors[len(tag.Authors)-1]
	author.Items = append(author.Items, jsonLeaf{
		Path: leaf.Path,
		Line: leaf.Line,
		Text: leaf.Text,
		Tags: leaf.Tags,
	})
}

// JSON writes the report as an indented JSON document in traversal order.
func JSON(w io.Writer, t *report.Tree) error {
	builder := &jsonBuilder{commits: []jsonCommit{}}
	t.Walk(builder)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(builder.commits)
}
