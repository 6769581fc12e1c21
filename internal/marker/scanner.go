// Package marker scans file content for comment markers such as TODO.
//
// The scan is deliberately syntax-agnostic: a permissive regex over every
// line beats a per-language comment grammar here, and the occasional false
// positive is acceptable.
package marker

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Match is one marker occurrence. Line is 1-based and refers to the content
// exactly as passed to Scan; Text is the whole line, trimmed. Tags holds the
// parenthesized annotations of forms like "TODO(alice,ui): fix".
type Match struct {
	Line int
	Text string
	Tags []string
}

// Options configures a Scanner.
type Options struct {
	// Tokens are the marker words to look for, matched case-insensitively
	// on word boundaries. Defaults to ["todo"].
	Tokens []string

	// CommentOnly requires a comment-introducing sequence somewhere before
	// the token on the same line.
	CommentOnly bool

	// MaxFileSize is the ceiling in bytes above which content is skipped
	// silently. Zero means DefaultMaxFileSize.
	MaxFileSize int64
}

// DefaultMaxFileSize is the size ceiling applied when none is configured.
const DefaultMaxFileSize = 1 << 20

// commentIntroducers cover the common single- and multi-line comment
// openers across the dialects we care to recognize.
var commentIntroducers = []string{"//", "#", "--", "/*", "*", ";"}

// Scanner finds marker matches in file content. A Scanner is immutable and
// safe for concurrent use; Scan is a pure function of its input.
type Scanner struct {
	pattern     *regexp.Regexp
	commentOnly bool
	maxFileSize int64
}

// New compiles a Scanner from options.
func New(opts Options) (*Scanner, error) {
	tokens := opts.Tokens
	if len(tokens) == 0 {
		tokens = []string{"todo"}
	}

	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, fmt.Errorf("empty marker token")
		}
		quoted[i] = regexp.QuoteMeta(t)
	}

	// Mirrors the classic TODO shape: optional "(tag, tag)" annotation,
	// optional "!" or ":" separator, then the statement.
	pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b(?:\((.*?)\))?[!:]?`)
	if err != nil {
		return nil, fmt.Errorf("compile marker pattern: %w", err)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Scanner{
		pattern:     pattern,
		commentOnly: opts.CommentOnly,
		maxFileSize: maxSize,
	}, nil
}

// Scan returns every marker match in content, in file order. Binary content
// and content over the size ceiling yield zero matches, not errors.
func (s *Scanner) Scan(content []byte) []Match {
	if int64(len(content)) > s.maxFileSize || IsBinary(content) {
		return nil
	}

	var matches []Match
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")

		loc := s.pattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		if s.commentOnly && !inComment(line, loc[0]) {
			continue
		}

		matches = append(matches, Match{
			Line: i + 1,
			Text: strings.TrimSpace(line),
			Tags: parseTags(line, loc),
		})
	}

	return matches
}

// IsBinary reports whether content looks like a binary file, using the
// usual NUL-byte probe over the first kilobyte.
func IsBinary(content []byte) bool {
	probe := content
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// inComment reports whether a comment introducer appears at or before the
// token offset.
func inComment(line string, tokenStart int) bool {
	prefix := line[:tokenStart]
	for _, intro := range commentIntroducers {
		if strings.Contains(prefix, intro) {
			return true
		}
	}
	return false
}

// parseTags extracts the annotation list from the first capture group, if
// it matched.
func parseTags(line string, loc []int) []string {
	if len(loc) < 4 || loc[2] < 0 {
		return nil
	}

	var tags []string
	for _, part := range strings.Split(line[loc[2]:loc[3]], ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
