// Package telemetry provides progress reporting adapters.
package telemetry

import (
	"context"

	"go.trai.ch/fab/internal/core/ports"
)

var _ ports.Tracer = (*NoOpTracer)(nil)

// NoOpTracer is a no-op implementation of ports.Tracer.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start creates a new no-op span.
func (t *NoOpTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, &NoOpSpan{}
}

// EmitPlan does nothing.
func (t *NoOpTracer) EmitPlan(_ context.Context, _ []string) {}

// Close does nothing.
func (t *NoOpTracer) Close() error { return nil }

// NoOpSpan is a no-op implementation of ports.Span.
type NoOpSpan struct{}

// Write does nothing and reports full success.
func (s *NoOpSpan) Write(p []byte) (int, error) { return len(p), nil }

// Cached does nothing.
func (s *NoOpSpan) Cached() {}

// RecordError does nothing.
func (s *NoOpSpan) RecordError(_ error) {}

// End does nothing.
func (s *NoOpSpan) End() {}
