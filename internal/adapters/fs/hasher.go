package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes record fingerprints and file content hashes with xxhash.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return hasher.Sum64(), nil
}

// ComputeFingerprint derives the cache address of a record: tool identity,
// resolved argv, configuration tag, and the content of every input path.
// Input order does not matter; paths are sorted before hashing.
func (h *Hasher) ComputeFingerprint(inv *domain.Invocation, inputs []string, tag domain.ConfigTag) (string, error) {
	hasher := xxhash.New()

	h.hashTool(inv.Tool, hasher)
	for _, arg := range inv.Args {
		_, _ = hasher.WriteString(arg)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(string(tag))
	_, _ = hasher.Write([]byte{0})

	sorted := make([]string, len(inputs))
	copy(sorted, inputs)
	slices.Sort(sorted)
	for _, input := range sorted {
		if err := h.hashPath(input, hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashTool mixes the tool reference and, when the tool is a file on disk, its
// content. A rebuilt generator invalidates everything it produced.
func (h *Hasher) hashTool(tool string, hasher *xxhash.Digest) {
	_, _ = hasher.WriteString(tool)
	_, _ = hasher.Write([]byte{0})

	info, err := os.Stat(tool)
	if err != nil || info.IsDir() {
		return
	}
	if sum, err := h.ComputeFileHash(tool); err == nil {
		_ = binary.Write(hasher, binary.LittleEndian, sum)
	}
}

// hashPath hashes a file, or every file under a directory.
func (h *Hasher) hashPath(path string, hasher *xxhash.Digest) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat input"), "path", path)
	}

	if info.IsDir() {
		for file := range h.walker.WalkFiles(path, nil) {
			if err := h.hashFile(file, hasher); err != nil {
				return err
			}
		}
		return nil
	}
	return h.hashFile(path, hasher)
}

func (h *Hasher) hashFile(path string, hasher *xxhash.Digest) error {
	_, _ = hasher.WriteString(path)
	_, _ = hasher.Write([]byte{0})

	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(hasher, binary.LittleEndian, sum); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
