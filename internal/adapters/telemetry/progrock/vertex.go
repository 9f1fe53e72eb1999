package progrock

import (
	"github.com/vito/progrock"
	"go.trai.ch/fab/internal/core/ports"
)

var _ ports.Span = (*Span)(nil)

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write forwards tool output to the vertex's stdout stream.
func (s *Span) Write(p []byte) (int, error) {
	return s.vertex.Stdout().Write(p)
}

// Cached marks the vertex as a cache hit.
func (s *Span) Cached() {
	s.vertex.Cached()
}

// RecordError attaches the failure reported when the span ends.
func (s *Span) RecordError(err error) {
	s.err = err
}

// End completes the vertex with the recorded error, if any.
func (s *Span) End() {
	s.vertex.Done(s.err)
}
