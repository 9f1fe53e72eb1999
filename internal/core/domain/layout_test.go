package domain_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/fab/internal/core/domain"
)

func TestLayout_SourcePath(t *testing.T) {
	l := domain.Layout{Root: "/ws", OutDir: "/ws/.fab/out"}
	if got := l.SourcePath("src/main.c"); got != filepath.Join("/ws", "src", "main.c") {
		t.Errorf("SourcePath = %q", got)
	}
}

func TestLayout_OutputPath_PerTagRoots(t *testing.T) {
	l := domain.Layout{Root: "/ws", OutDir: "/ws/.fab/out"}

	host := l.OutputPath(domain.TagHost, "app.bin")
	target := l.OutputPath(domain.TagTarget, "app.bin")

	if host == target {
		t.Error("host and target outputs of the same path must not collide")
	}
	if host != filepath.Join("/ws", ".fab", "out", "host", "app.bin") {
		t.Errorf("host output path = %q", host)
	}
	if target != filepath.Join("/ws", ".fab", "out", "target", "app.bin") {
		t.Errorf("target output path = %q", target)
	}
}

func TestExecutionRecord_OutputPaths(t *testing.T) {
	rec := &domain.ExecutionRecord{
		Outputs: []domain.ResolvedOutput{
			{Path: "/out/target/app.bin"},
			{Path: "/out/target/app.map", Optional: true},
		},
	}

	if got := rec.OutputPaths(); len(got) != 2 {
		t.Errorf("OutputPaths = %v", got)
	}
	required := rec.RequiredOutputPaths()
	if len(required) != 1 || required[0] != "/out/target/app.bin" {
		t.Errorf("RequiredOutputPaths = %v", required)
	}
}
