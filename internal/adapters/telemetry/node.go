package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	progrockadapter "go.trai.ch/fab/internal/adapters/telemetry/progrock"
	"go.trai.ch/fab/internal/core/ports"
)

// TracerNodeID is the unique identifier for the tracer Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			return progrockadapter.New(), nil
		},
	})
}
