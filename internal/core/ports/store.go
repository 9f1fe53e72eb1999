package ports

import "go.trai.ch/fab/internal/core/domain"

// CacheStore is the content-addressed result cache shared by all workers.
// Lookups may run concurrently; puts are first-writer-wins per fingerprint.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Get retrieves the entry for a fingerprint. Returns nil, nil on a miss.
	Get(fingerprint string) (*domain.CacheEntry, error)

	// Put archives the given output files under the fingerprint and returns
	// the stored entry. If an entry already exists it is returned unchanged.
	Put(fingerprint, record string, outputs []domain.ResolvedOutput) (*domain.CacheEntry, error)

	// Materialize places the entry's stored outputs back at their recorded
	// paths, hard-linking where possible and copying otherwise.
	Materialize(entry *domain.CacheEntry) error
}

// StoreFactory opens a CacheStore rooted at a directory. The cache location
// is a per-run flag, so stores are opened by the application, not at wiring
// time.
type StoreFactory interface {
	Open(dir string) (CacheStore, error)
}
