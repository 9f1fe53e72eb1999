package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/fab/internal/adapters/fs"
	"go.trai.ch/fab/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func fingerprint(t *testing.T, inv *domain.Invocation, inputs []string, tag domain.ConfigTag) string {
	t.Helper()
	h := fs.NewHasher(fs.NewWalker())
	fp, err := h.ComputeFingerprint(inv, inputs, tag)
	if err != nil {
		t.Fatalf("ComputeFingerprint failed: %v", err)
	}
	return fp
}

func TestHasher_ComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "int main() {}")

	h := fs.NewHasher(fs.NewWalker())
	sum1, err := h.ComputeFileHash(path)
	if err != nil {
		t.Fatalf("ComputeFileHash failed: %v", err)
	}
	sum2, _ := h.ComputeFileHash(path)
	if sum1 != sum2 {
		t.Error("hash must be stable for unchanged content")
	}

	if _, err := h.ComputeFileHash(filepath.Join(dir, "ghost.c")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestHasher_ComputeFingerprint_OrderIndependent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.c", "aaa")
	b := writeFile(t, dir, "b.c", "bbb")
	inv := &domain.Invocation{Tool: "cc", Args: []string{"-O2"}}

	fp1 := fingerprint(t, inv, []string{a, b}, domain.TagTarget)
	fp2 := fingerprint(t, inv, []string{b, a}, domain.TagTarget)
	if fp1 != fp2 {
		t.Error("input order must not change the fingerprint")
	}
}

func TestHasher_ComputeFingerprint_ContentSensitive(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "main.c", "int main() {}")
	inv := &domain.Invocation{Tool: "cc"}

	before := fingerprint(t, inv, []string{input}, domain.TagTarget)
	writeFile(t, dir, "main.c", "int main() { return 1; }")
	after := fingerprint(t, inv, []string{input}, domain.TagTarget)

	if before == after {
		t.Error("changed input content must change the fingerprint")
	}
}

func TestHasher_ComputeFingerprint_TagSensitive(t *testing.T) {
	inv := &domain.Invocation{Tool: "cc"}

	host := fingerprint(t, inv, nil, domain.TagHost)
	target := fingerprint(t, inv, nil, domain.TagTarget)
	if host == target {
		t.Error("the configuration tag must be part of the fingerprint")
	}
}

func TestHasher_ComputeFingerprint_ArgSensitive(t *testing.T) {
	fp1 := fingerprint(t, &domain.Invocation{Tool: "cc", Args: []string{"-O2"}}, nil, domain.TagTarget)
	fp2 := fingerprint(t, &domain.Invocation{Tool: "cc", Args: []string{"-O0"}}, nil, domain.TagTarget)
	if fp1 == fp2 {
		t.Error("argv must be part of the fingerprint")
	}
}

func TestHasher_ComputeFingerprint_DirectoryInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, src, "deep/nested.c", "x")
	inv := &domain.Invocation{Tool: "cc"}

	before := fingerprint(t, inv, []string{src}, domain.TagTarget)
	writeFile(t, src, "deep/nested.c", "y")
	after := fingerprint(t, inv, []string{src}, domain.TagTarget)

	if before == after {
		t.Error("directory inputs must cover nested file content")
	}
}

func TestHasher_ComputeFingerprint_ToolContentSensitive(t *testing.T) {
	dir := t.TempDir()
	tool := writeFile(t, dir, "gen.sh", "#!/bin/sh\necho v1")

	before := fingerprint(t, &domain.Invocation{Tool: tool}, nil, domain.TagTarget)
	writeFile(t, dir, "gen.sh", "#!/bin/sh\necho v2")
	after := fingerprint(t, &domain.Invocation{Tool: tool}, nil, domain.TagTarget)

	if before == after {
		t.Error("a rebuilt tool binary must change the fingerprint")
	}
}

func TestHasher_ComputeFingerprint_MissingInput(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	_, err := h.ComputeFingerprint(&domain.Invocation{Tool: "cc"}, []string{"/nonexistent/input.c"}, domain.TagTarget)
	if err == nil {
		t.Error("expected error for missing input, got nil")
	}
}
