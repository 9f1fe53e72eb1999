// Package shell provides the process executor adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor runs tool invocations with os/exec. Tools are opaque: argv plus
// working directory in, files plus exit code out.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the invocation. Context cancellation terminates the process.
// Any start or exit failure is reported as domain.ErrToolExecution with the
// exit code attached.
func (e *Executor) Execute(ctx context.Context, inv *domain.Invocation) error {
	argv := inv.Argv()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // Declared tool invocation
	cmd.Dir = inv.Dir

	cmd.Stdout = e.writer(inv.Stdout, "info")
	cmd.Stderr = e.writer(inv.Stderr, "error")

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		toolErr := zerr.With(zerr.Wrap(domain.ErrToolExecution, err.Error()), "tool", inv.Tool)
		return zerr.With(toolErr, "exit_code", exitCode)
	}
	return nil
}

func (e *Executor) writer(w io.Writer, level string) io.Writer {
	if w != nil {
		return w
	}
	return &logWriter{logger: e.logger, level: level}
}

// logWriter forwards process output to the logger line by line.
type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (int, error) {
	for line := range strings.Lines(strings.TrimSuffix(string(p), "\n")) {
		line = strings.TrimSuffix(line, "\n")
		if w.level == "error" {
			w.logger.Error(zerr.New(line))
		} else {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}
