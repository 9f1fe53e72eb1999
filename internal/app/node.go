package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fab/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/fab/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/fab/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/fab/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/fab/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/fab/internal/engine/planner"
	"go.trai.ch/fab/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			planner.NodeID,
			scheduler.NodeID,
			cas.NodeID,
			shell.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: application, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	plnr, err := graft.Dep[*planner.Planner](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	stores, err := graft.Dep[ports.StoreFactory](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
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

	return New(loader, plnr, sched, stores, executor, tracer, log), nil
}
