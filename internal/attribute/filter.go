package attribute

import (
	"sort"
	"strings"

	"github.com/todotree-dev/todotree/internal/gitrepo"
)

// FilterOptions defines criteria for including or excluding tracked files
// before scanning.
type FilterOptions struct {
	// ExcludeDirs is a list of directory names to exclude.
	// Matching is segment-aware: "vendor" excludes "vendor/foo" and
	// "pkg/vendor/bar", but not "vendor_stuff/foo".
	ExcludeDirs []string

	// IncludeExtensions is a list of extensions to include (e.g., ".go").
	// If empty, all extensions are included.
	IncludeExtensions []string
}

// DefaultExcludeDirs returns the directory names skipped by default. These
// are build outputs and dependency trees where markers are never ours.
func DefaultExcludeDirs() []string {
	return []string{
		"node_modules",
		".git",
		"dist",
		"build",
		"out",
		"vendor",
		"target",
		".idea",
	}
}

// filterEntries applies the filter options to tracked files, returning a new
// slice sorted by path for a deterministic scan order.
func filterEntries(entries []gitrepo.FileEntry, opts FilterOptions) []gitrepo.FileEntry {
	if len(entries) == 0 {
		return nil
	}

	var filtered []gitrepo.FileEntry
	for _, entry := range entries {
		if shouldExclude(entry.Path, opts.ExcludeDirs) {
			continue
		}
		if !shouldIncludeExtension(entry.Path, opts.IncludeExtensions) {
			continue
		}
		filtered = append(filtered, entry)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Path < filtered[j].Path
	})
	return filtered
}

// shouldExclude returns true if the path contains any of the excluded segments.
func shouldExclude(path string, excludes []string) bool {
	if len(excludes) == 0 {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		for _, exclude := range excludes {
			if part == exclude {
				return true
			}
		}
	}
	return false
}

// shouldIncludeExtension returns true if no filter is set OR the path matches
// one extension.
func shouldIncludeExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
