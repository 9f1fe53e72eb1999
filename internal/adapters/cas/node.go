package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fab/internal/core/ports"
)

// NodeID is the unique identifier for the cache store factory Graft node.
const NodeID graft.ID = "adapter.cache_store"

// Factory implements ports.StoreFactory.
type Factory struct{}

// Open opens a cache store rooted at dir.
func (Factory) Open(dir string) (ports.CacheStore, error) {
	return NewStore(dir)
}

func init() {
	graft.Register(graft.Node[ports.StoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StoreFactory, error) {
			return Factory{}, nil
		},
	})
}
