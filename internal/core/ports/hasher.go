package ports

import "go.trai.ch/fab/internal/core/domain"

// Hasher computes content fingerprints for execution records.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFingerprint derives the cache address of a record from its tool
	// identity, resolved argv, configuration tag, and the content of all
	// resolved input paths. Directory inputs cover every file beneath them.
	ComputeFingerprint(inv *domain.Invocation, inputs []string, tag domain.ConfigTag) (string, error)

	// ComputeFileHash hashes a single file's content.
	ComputeFileHash(path string) (uint64, error)
}
