// Package cas implements the content-addressed cache for completed records.
package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// Store keeps output blobs and per-fingerprint JSON manifests under one
// directory. Entries are addressed purely by content fingerprint; nothing is
// expired by time. Puts are first-writer-wins: manifests are written to a
// temp file and renamed, and a fingerprint that already has a manifest keeps
// it.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) a cache rooted at dir.
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: filepath.Clean(dir)}
	for _, sub := range []string{s.manifestDir(), s.blobDir()} {
		if err := os.MkdirAll(sub, 0o750); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create cache directory"), "path", sub)
		}
	}
	return s, nil
}

func (s *Store) manifestDir() string { return filepath.Join(s.dir, "manifests") }
func (s *Store) blobDir() string     { return filepath.Join(s.dir, "blobs") }

func (s *Store) manifestPath(fingerprint string) string {
	return filepath.Join(s.manifestDir(), fingerprint+".json")
}

func (s *Store) blobPath(sum string) string {
	return filepath.Join(s.blobDir(), sum)
}

// Get retrieves the entry for a fingerprint. Returns nil, nil on a miss.
func (s *Store) Get(fingerprint string) (*domain.CacheEntry, error) {
	data, err := os.ReadFile(s.manifestPath(fingerprint)) //nolint:gosec // Path is derived from a hex fingerprint
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read cache manifest"), "fingerprint", fingerprint)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal cache manifest"), "fingerprint", fingerprint)
	}
	return &entry, nil
}

// Put archives the record's output files under the fingerprint. Optional
// outputs that do not exist are simply not recorded. If another writer got
// there first, the existing entry is returned unchanged.
func (s *Store) Put(fingerprint, record string, outputs []domain.ResolvedOutput) (*domain.CacheEntry, error) {
	if existing, err := s.Get(fingerprint); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	entry := &domain.CacheEntry{
		Fingerprint: fingerprint,
		Record:      record,
		CreatedAt:   time.Now().UTC(),
	}

	for _, out := range outputs {
		info, err := os.Stat(out.Path)
		if err != nil {
			if os.IsNotExist(err) && out.Optional {
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat output for caching"), "path", out.Path)
		}
		sum, err := s.storeBlob(out.Path)
		if err != nil {
			return nil, err
		}
		entry.Outputs = append(entry.Outputs, domain.CachedOutput{
			Path: out.Path,
			Blob: sum,
			Size: info.Size(),
		})
	}

	if err := s.writeManifest(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// storeBlob copies a file into the blob directory named by its content hash.
func (s *Store) storeBlob(path string) (string, error) {
	src, err := os.Open(path) //nolint:gosec // Path was produced by this build
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open output"), "path", path)
	}
	defer src.Close() //nolint:errcheck // Best effort close in defer

	tmp, err := os.CreateTemp(s.blobDir(), "blob-*")
	if err != nil {
		return "", zerr.Wrap(err, "failed to create blob temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Removed only when rename did not happen

	hasher := xxhash.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), src); err != nil {
		_ = tmp.Close()
		return "", zerr.With(zerr.Wrap(err, "failed to copy output into blob store"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return "", zerr.Wrap(err, "failed to close blob temp file")
	}

	sum := fmt.Sprintf("%016x", hasher.Sum64())
	blob := s.blobPath(sum)
	if _, err := os.Stat(blob); err == nil {
		return sum, nil
	}
	if err := os.Rename(tmp.Name(), blob); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to commit blob"), "blob", sum)
	}
	return sum, nil
}

func (s *Store) writeManifest(entry *domain.CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache manifest")
	}

	tmp, err := os.CreateTemp(s.manifestDir(), "manifest-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create manifest temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Removed only when rename did not happen

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write cache manifest")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to close manifest temp file")
	}

	path := s.manifestPath(entry.Fingerprint)
	if _, err := os.Stat(path); err == nil {
		// Lost the race; the first writer wins.
		return nil
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to commit cache manifest"), "fingerprint", entry.Fingerprint)
	}
	return nil
}

// Materialize places the entry's stored outputs back at their recorded paths.
// Blobs are hard-linked when the filesystem allows it and copied otherwise.
func (s *Store) Materialize(entry *domain.CacheEntry) error {
	for _, out := range entry.Outputs {
		if err := os.MkdirAll(filepath.Dir(out.Path), 0o750); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", out.Path)
		}
		if err := os.Remove(out.Path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "failed to clear stale output"), "path", out.Path)
		}

		blob := s.blobPath(out.Blob)
		if err := os.Link(blob, out.Path); err == nil {
			continue
		}
		if err := copyFile(blob, out.Path); err != nil {
			matErr := zerr.With(zerr.Wrap(err, "failed to materialize output"), "path", out.Path)
			return zerr.With(matErr, "blob", out.Blob)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // Path is derived from a hex blob hash
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) //nolint:gosec // Declared output path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
