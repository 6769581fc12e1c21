package attribute

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/todotree-dev/todotree/internal/gitrepo"
	"github.com/todotree-dev/todotree/internal/marker"
)

// Provider is the history access the engine needs. *gitrepo.Repo satisfies it.
type Provider interface {
	TrackedFiles(commitSHA string) ([]gitrepo.FileEntry, error)
	FileContent(commitSHA, path string) ([]byte, error)
	WorktreeFile(path string) ([]byte, error)
	BlameFile(commitSHA, path string) ([]gitrepo.BlameLine, error)
	Commit(sha string) (gitrepo.Commit, error)
	NearestTag(commitSHA string) (*gitrepo.Tag, error)
}

// Options configures one engine run.
type Options struct {
	// Worktree reads file content from the working tree instead of the
	// commit tree. Lines that no longer match their blamed content are
	// attributed to the Uncommitted sentinel.
	Worktree bool

	// Jobs caps the file-scan worker pool. Zero means GOMAXPROCS.
	Jobs int

	Filter FilterOptions
}

// Result is the outcome of a scan: the flat record set plus soft-failure
// accounting. Record order follows the sorted file order.
type Result struct {
	Records      []Record
	SkippedFiles int
}

// Engine attributes marker matches to commits for a single scan. Create one
// per scan: the blame and tag memos it owns are only valid for one revision
// walk and are discarded with it.
type Engine struct {
	provider Provider
	scanner  *marker.Scanner
	logger   *log.Logger
	opts     Options

	blameMu sync.Mutex
	blames  map[string][]gitrepo.BlameLine

	tagMu sync.Mutex
	tags  map[string]*gitrepo.Tag
}

// New creates an Engine. logger may be nil.
func New(provider Provider, scanner *marker.Scanner, logger *log.Logger, opts Options) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		provider: provider,
		scanner:  scanner,
		logger:   logger,
		opts:     opts,
		blames:   make(map[string][]gitrepo.BlameLine),
		tags:     make(map[string]*gitrepo.Tag),
	}
}

// Run scans every tracked file at the given commit and resolves each marker
// match to its owning commit and nearest tag. File enumeration failure is
// fatal; per-file failures are counted and skipped.
func (e *Engine) Run(ctx context.Context, commitSHA string) (*Result, error) {
	entries, err := e.provider.TrackedFiles(commitSHA)
	if err != nil {
		return nil, fmt.Errorf("list tracked files: %w", err)
	}
	entries = filterEntries(entries, e.opts.Filter)

	jobs := e.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Per-file results land at their own index, so no mutex is needed;
	// flattening afterwards keeps the deterministic file order.
	fileRecords := make([][]Record, len(entries))
	skipped := make([]bool, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(entries), 1)))

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			records, err := e.scanFile(commitSHA, entry.Path)
			if err != nil {
				e.logger.Warn("skipping file", "path", entry.Path, "err", err)
				skipped[i] = true
				return nil
			}
			fileRecords[i] = records
			return nil
		})
	}

	// Synchronization barrier: aggregation needs the complete record set.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, records := range fileRecords {
		result.Records = append(result.Records, records...)
		if skipped[i] {
			result.SkippedFiles++
		}
	}
	return result, nil
}

// scanFile scans one file and resolves every match in it. Blame is computed
// at most once per file regardless of how many lines match.
func (e *Engine) scanFile(commitSHA, path string) ([]Record, error) {
	content, err := e.readFile(commitSHA, path)
	if err != nil {
		return nil, err
	}

	matches := e.scanner.Scan(content)
	if len(matches) == 0 {
		return nil, nil
	}

	blame, err := e.blameFile(commitSHA, path)
	if err != nil {
		if !e.opts.Worktree {
			return nil, err
		}
		// A worktree-only file has no history; every match is uncommitted.
		blame = nil
	}

	records := make([]Record, 0, len(matches))
	for _, match := range matches {
		commit, err := e.resolveLine(blame, match)
		if err != nil {
			return nil, err
		}

		record := Record{
			Path:   path,
			Line:   match.Line,
			Text:   match.Text,
			Tags:   match.Tags,
			Commit: commit,
		}
		if !record.IsUncommitted() {
			tag, err := e.nearestTag(commit.SHA)
			if err != nil {
				return nil, err
			}
			record.Tag = tag
		}
		records = append(records, record)
	}

	return records, nil
}

func (e *Engine) readFile(commitSHA, path string) ([]byte, error) {
	if e.opts.Worktree {
		return e.provider.WorktreeFile(path)
	}
	return e.provider.FileContent(commitSHA, path)
}

// resolveLine maps one match to its owning commit. In worktree mode a line
// whose trimmed text no longer equals the blamed text, or which lies past
// the end of the blamed file, belongs to the Uncommitted sentinel.
func (e *Engine) resolveLine(blame []gitrepo.BlameLine, match marker.Match) (gitrepo.Commit, error) {
	if match.Line > len(blame) {
		if e.opts.Worktree {
			return Uncommitted, nil
		}
		return gitrepo.Commit{}, fmt.Errorf("blame has %d lines, match at line %d", len(blame), match.Line)
	}

	line := blame[match.Line-1]
	if e.opts.Worktree && strings.TrimSpace(line.Text) != match.Text {
		return Uncommitted, nil
	}

	return e.provider.Commit(line.SHA)
}

// blameFile memoizes whole-file blame per (path, revision) so multiple
// matches in one file never recompute the history traversal.
func (e *Engine) blameFile(commitSHA, path string) ([]gitrepo.BlameLine, error) {
	key := path + "@" + commitSHA

	e.blameMu.Lock()
	if lines, ok := e.blames[key]; ok {
		e.blameMu.Unlock()
		return lines, nil
	}
	e.blameMu.Unlock()

	lines, err := e.provider.BlameFile(commitSHA, path)
	if err != nil {
		return nil, err
	}

	e.blameMu.Lock()
	e.blames[key] = lines
	e.blameMu.Unlock()
	return lines, nil
}

// nearestTag memoizes tag resolution per commit.
func (e *Engine) nearestTag(commitSHA string) (*gitrepo.Tag, error) {
	e.tagMu.Lock()
	if tag, ok := e.tags[commitSHA]; ok {
		e.tagMu.Unlock()
		return tag, nil
	}
	e.tagMu.Unlock()

	tag, err := e.provider.NearestTag(commitSHA)
	if err != nil {
		// Conflicting or unreadable tag data degrades to "no tag"
		// rather than failing the line.
		e.logger.Warn("tag resolution failed", "commit", commitSHA, "err", err)
		tag = nil
	}

	e.tagMu.Lock()
	e.tags[commitSHA] = tag
	e.tagMu.Unlock()
	return tag, nil
}
