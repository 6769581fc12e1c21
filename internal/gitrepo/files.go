package gitrepo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// FileEntry describes one tracked file in a commit tree.
type FileEntry struct {
	Path string
	Size int64
}

// TrackedFiles enumerates the files of the commit's tree in tree order.
func (r *Repo) TrackedFiles(commitSHA string) ([]FileEntry, error) {
	tree, err := r.treeOf(commitSHA)
	if err != nil {
		return nil, err
	}

	var files []FileEntry
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, FileEntry{
			Path: f.Name,
			Size: f.Size,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// FileContent returns the blob content of path at the given commit.
func (r *Repo) FileContent(commitSHA, path string) ([]byte, error) {
	tree, err := r.treeOf(commitSHA)
	if err != nil {
		return nil, err
	}

	f, err := tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("file %q at %s: %w", path, commitSHA, ErrNotFound)
		}
		return nil, fmt.Errorf("get file %q: %w", path, err)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", path, err)
	}

	return []byte(content), nil
}

// WorktreeFile reads path from the working tree instead of a commit tree.
// Used only when scanning in worktree mode.
func (r *Repo) WorktreeFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("worktree file %q: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read worktree file %q: %w", path, err)
	}
	return data, nil
}

func (r *Repo) treeOf(commitSHA string) (*object.Tree, error) {
	obj, err := r.repo.CommitObject(plumbing.NewHash(commitSHA))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("commit %s: %w", commitSHA, ErrNotFound)
		}
		return nil, fmt.Errorf("get commit %s: %w", commitSHA, err)
	}

	tree, err := obj.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	return tree, nil
}
