package domain

import "time"

// CachedOutput records where one output file of a completed record is stored
// in the blob store and where it belongs on disk.
type CachedOutput struct {
	Path string `json:"path"`
	Blob string `json:"blob"`
	Size int64  `json:"size"`
}

// CacheEntry is the stored result of a completed execution record, addressed
// by the fingerprint of its inputs, argv, and tool. Entries are never expired
// by time; only a fingerprint mismatch makes them unreachable.
type CacheEntry struct {
	Fingerprint string         `json:"fingerprint"`
	Record      string         `json:"record"`
	Outputs     []CachedOutput `json:"outputs"`
	CreatedAt   time.Time      `json:"created_at"`
}
