package domain

import "path/filepath"

// Layout describes where a build reads sources and writes outputs. Outputs
// land under a per-tag root so host and target records of the same action
// never collide on disk.
type Layout struct {
	// Root is the workspace root; declared inputs without a producing action
	// resolve against it.
	Root string

	// OutDir is the output root; record outputs resolve to OutDir/<tag>/<path>.
	OutDir string
}

// SourcePath resolves a declared path against the workspace root.
func (l Layout) SourcePath(path string) string {
	return filepath.Join(l.Root, path)
}

// OutputPath resolves a declared output path for the given configuration tag.
func (l Layout) OutputPath(tag ConfigTag, path string) string {
	return filepath.Join(l.OutDir, string(tag), path)
}
