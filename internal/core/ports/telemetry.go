package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer reports build progress, one span per execution record.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string) (context.Context, Span)
	// EmitPlan signals the set of records planned for execution.
	EmitPlan(ctx context.Context, records []string)
	// Close flushes the underlying recorder.
	Close() error
}

// Span represents one record's execution. Writes carry the tool's output.
type Span interface {
	io.Writer
	// Cached marks the span as satisfied from the cache.
	Cached()
	// RecordError attaches the failure reported at End.
	RecordError(err error)
	// End completes the span.
	End()
}
