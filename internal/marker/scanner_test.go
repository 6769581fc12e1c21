package marker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustScanner(t *testing.T, opts Options) *Scanner {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestScan(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		content  string
		expected []Match
	}{
		{
			name:    "single todo",
			content: "package main\n// todo: fix this\n",
			expected: []Match{
				{Line: 2, Text: "// todo: fix this"},
			},
		},
		{
			name:    "case insensitive",
			content: "# TODO clean up\nx = 1\n# ToDo later\n",
			expected: []Match{
				{Line: 1, Text: "# TODO clean up"},
				{Line: 3, Text: "# ToDo later"},
			},
		},
		{
			name:    "word boundary required",
			content:  "mastodon = 1\ntodos := nil\n",
			expected: nil,
		},
		{
			name:    "annotation tags",
			content: "// TODO(alice, ui): polish\n",
			expected: []Match{
				{Line: 1, Text: "// TODO(alice, ui): polish", Tags: []string{"alice", "ui"}},
			},
		},
		{
			name:    "preserves original line numbers",
			content: "a\nb\nc\n// todo last\n",
			expected: []Match{
				{Line: 4, Text: "// todo last"},
			},
		},
		{
			name:    "trims surrounding whitespace only",
			content: "\t  // todo: indented\t\n",
			expected: []Match{
				{Line: 1, Text: "// todo: indented"},
			},
		},
		{
			name: "custom tokens",
			opts: Options{Tokens: []string{"fixme", "hack"}},
			content: strings.Join([]string{
				"// FIXME broken",
				"// todo ignored under custom tokens",
				"# HACK workaround",
			}, "\n"),
			expected: []Match{
				{Line: 1, Text: "// FIXME broken"},
				{Line: 3, Text: "# HACK workaround"},
			},
		},
		{
			name:    "comment only rejects bare text",
			opts:    Options{CommentOnly: true},
			content: "todo write docs\n// todo in comment\n",
			expected: []Match{
				{Line: 2, Text: "// todo in comment"},
			},
		},
		{
			name:     "no matches",
			content:  "nothing here\n",
			expected: nil,
		},
		{
			name:     "empty content",
			content:  "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustScanner(t, tt.opts)
			assert.Equal(t, tt.expected, s.Scan([]byte(tt.content)))
		})
	}
}

func TestScanSkipsBinary(t *testing.T) {
	s := mustScanner(t, Options{})
	content := append([]byte("// todo binary\x00"), []byte("more")...)
	assert.Empty(t, s.Scan(content))
}

func TestScanSkipsOversize(t *testing.T) {
	s := mustScanner(t, Options{MaxFileSize: 16})
	content := []byte("// todo this line alone is over the ceiling\n")
	assert.Empty(t, s.Scan(content))

	within := []byte("// todo\n")
	assert.Len(t, s.Scan(within), 1)
}

func TestScanCRLF(t *testing.T) {
	s := mustScanner(t, Options{})
	got := s.Scan([]byte("// todo one\r\nplain\r\n// todo two\r\n"))
	require.Len(t, got, 2)
	assert.Equal(t, "// todo one", got[0].Text)
	assert.Equal(t, 3, got[1].Line)
}

func TestScanIsRestartable(t *testing.T) {
	s := mustScanner(t, Options{})
	content := []byte("// todo once\n")
	first := s.Scan(content)
	second := s.Scan(content)
	assert.Equal(t, first, second)
}

func TestIsBinary(t *testing.T) {
	assert.True(t, IsBinary([]byte{0x7f, 'E', 'L', 'F', 0x00}))
	assert.False(t, IsBinary([]byte("plain text\n")))
	assert.False(t, IsBinary(nil))
}

func TestNewRejectsEmptyToken(t *testing.T) {
	_, err := New(Options{Tokens: []string{" "}})
	require.Error(t, err)
}
