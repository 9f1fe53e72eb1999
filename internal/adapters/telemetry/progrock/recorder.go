// Package progrock provides the Progrock implementation of the tracer port.
package progrock

import (
	"context"
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/fab/internal/core/ports"
)

var _ ports.Tracer = (*Recorder)(nil)

// Recorder implements ports.Tracer on a progrock writer, one vertex per
// execution record.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a Recorder rendering linearly to the process streams.
func New() *Recorder {
	return NewRecorder(NewLinearWriter(os.Stdout, os.Stderr))
}

// NewRecorder creates a Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start begins a vertex for the named record.
func (r *Recorder) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	v := r.rec.Vertex(digest.FromString(name), name)
	return ctx, &Span{vertex: v}
}

// EmitPlan records the planned record set on a dedicated vertex.
func (r *Recorder) EmitPlan(_ context.Context, records []string) {
	v := r.rec.Vertex(digest.FromString("fab.plan"), "plan")
	for _, name := range records {
		_, _ = fmt.Fprintln(v.Stdout(), name)
	}
	v.Done(nil)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
