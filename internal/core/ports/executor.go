// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/fab/internal/core/domain"
)

// Executor runs tool invocations as external processes.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the invocation and returns domain.ErrToolExecution (with
	// exit code metadata) when the process cannot start or exits non-zero.
	// Cancelling the context terminates the process.
	Execute(ctx context.Context, inv *domain.Invocation) error
}
