package progrock_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/fab/internal/adapters/telemetry/progrock"
	"go.trai.ch/zerr"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_SpanLifecycle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	recorder := progrock.NewRecorder(progrock.NewLinearWriter(&stdout, &stderr))

	_, span := recorder.Start(context.Background(), "compile@target")
	assert.NotNil(t, span)

	_, err := span.Write([]byte("cc: compiling main.c\n"))
	assert.NoError(t, err)

	span.RecordError(zerr.New("link failed"))
	span.End()

	recorder.EmitPlan(context.Background(), []string{"compile@target", "link@target"})
	assert.NoError(t, recorder.Close())

	assert.Contains(t, stderr.String(), "[compile@target] started")
	assert.Contains(t, stderr.String(), "failed: link failed")
	assert.Contains(t, stdout.String(), "[compile@target] cc: compiling main.c")
	assert.Contains(t, stdout.String(), "[plan] link@target")
}

func TestRecorder_CachedSpan(t *testing.T) {
	var stdout, stderr bytes.Buffer
	recorder := progrock.NewRecorder(progrock.NewLinearWriter(&stdout, &stderr))

	_, span := recorder.Start(context.Background(), "gen@host")
	span.Cached()
	span.End()

	assert.NoError(t, recorder.Close())
	assert.Contains(t, stderr.String(), "cached")
}

func TestRecorder_SuccessfulSpan(t *testing.T) {
	var stdout, stderr bytes.Buffer
	recorder := progrock.NewRecorder(progrock.NewLinearWriter(&stdout, &stderr))

	_, span := recorder.Start(context.Background(), "link@target")
	span.End()

	assert.NoError(t, recorder.Close())
	assert.Contains(t, stderr.String(), "[link@target]")
	assert.Contains(t, stderr.String(), "done")
}
