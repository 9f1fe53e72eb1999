// Package fs provides file system adapters for walking, hashing, and
// verifying files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker yields the files under a directory in lexical order.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all regular files under root, skipping version-control
// directories and any name matching the ignore patterns. filepath.WalkDir
// visits entries in lexical order, so the sequence is deterministic.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if skip := w.skip(d, ignores); skip != nil {
				return skip
			}
			if d.IsDir() || w.ignored(d.Name(), ignores) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) skip(d fs.DirEntry, ignores []string) error {
	if !d.IsDir() {
		return nil
	}
	name := d.Name()
	if name == ".git" || name == ".jj" || w.ignored(name, ignores) {
		return filepath.SkipDir
	}
	return nil
}

func (w *Walker) ignored(name string, ignores []string) bool {
	for _, pattern := range ignores {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
