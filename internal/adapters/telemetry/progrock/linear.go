package progrock

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"github.com/vito/progrock"
)

var _ progrock.Writer = (*LinearWriter)(nil)

// LinearWriter renders status updates as chronological, prefixed lines.
// Vertex output goes to stdout, state transitions to stderr.
type LinearWriter struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	names   map[string]string
	buffers map[string]*bytes.Buffer
	done    map[string]bool
}

// NewLinearWriter creates a LinearWriter. Nil writers default to the
// process streams.
func NewLinearWriter(stdout, stderr io.Writer) *LinearWriter {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &LinearWriter{
		stdout:  stdout,
		stderr:  stderr,
		output:  termenv.NewOutput(stderr, termenv.WithProfile(colorProfile())),
		names:   make(map[string]string),
		buffers: make(map[string]*bytes.Buffer),
		done:    make(map[string]bool),
	}
}

func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// WriteStatus renders new vertices, completions, and buffered log lines.
func (w *LinearWriter) WriteStatus(update *progrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, v := range update.Vertexes {
		w.observeVertexLocked(v)
	}
	for _, l := range update.Logs {
		w.appendLogLocked(l.Vertex, l.Data)
	}
	return nil
}

// Close flushes any remaining partial log lines.
func (w *LinearWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id := range w.buffers {
		w.flushLocked(id)
	}
	return nil
}

func (w *LinearWriter) observeVertexLocked(v *progrock.Vertex) {
	if _, seen := w.names[v.Id]; !seen {
		w.names[v.Id] = v.Name
		w.buffers[v.Id] = new(bytes.Buffer)
		prefix := w.output.String(fmt.Sprintf("[%s]", v.Name)).Faint().String()
		_, _ = fmt.Fprintf(w.stderr, "%s started\n", prefix)
	}
	if v.Completed == nil || w.done[v.Id] {
		return
	}
	w.done[v.Id] = true
	w.flushLocked(v.Id)

	prefix := fmt.Sprintf("[%s]", w.names[v.Id])
	switch {
	case v.Error != nil:
		symbol := w.output.String("✗").Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(w.stderr, "%s %s failed: %s\n", prefix, symbol, *v.Error)
	case v.Cached:
		symbol := w.output.String("✓").Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(w.stderr, "%s %s cached\n", prefix, symbol)
	default:
		symbol := w.output.String("✓").Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(w.stderr, "%s %s done\n", prefix, symbol)
	}
}

// appendLogLocked buffers log data and prints complete lines with the vertex
// name prefix. Logs for unknown vertices are dropped.
func (w *LinearWriter) appendLogLocked(id string, data []byte) {
	buf, ok := w.buffers[id]
	if !ok {
		return
	}
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				rest := new(bytes.Buffer)
				rest.Write(line)
				w.buffers[id] = rest
			}
			return
		}
		w.printLineLocked(w.names[id], line)
	}
}

func (w *LinearWriter) flushLocked(id string) {
	buf, ok := w.buffers[id]
	if !ok || buf.Len() == 0 {
		return
	}
	w.printLineLocked(w.names[id], buf.Bytes())
	buf.Reset()
}

func (w *LinearWriter) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w.stdout, "[%s] %s\n", name, string(line))
}
