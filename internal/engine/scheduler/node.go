package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fab/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/fab/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/fab/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/fab/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/fab/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.OutputVerifier](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(executor, hasher, verifier, tracer, log), nil
		},
	})
}
