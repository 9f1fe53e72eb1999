package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"go.trai.ch/fab/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestLogger_Levels(t *testing.T) {
	l, ok := logger.New().(*logger.Logger)
	if !ok {
		t.Fatal("expected concrete *logger.Logger")
	}

	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Info("building compile@target")
	l.Warn("configuration override ignored")
	l.Error(zerr.New("tool exploded"))

	out := buf.String()
	for _, want := range []string{
		"level=INFO",
		"building compile@target",
		"level=WARN",
		"configuration override ignored",
		"level=ERROR",
		"tool exploded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
}
