package fs_test

import (
	"errors"
	"path/filepath"
	"testing"

	"go.trai.ch/fab/internal/adapters/fs"
	"go.trai.ch/fab/internal/core/domain"
)

func TestVerifier_VerifyOutputs(t *testing.T) {
	dir := t.TempDir()
	present := writeFile(t, dir, "app.bin", "ELF")
	empty := writeFile(t, dir, "empty.bin", "")
	missing := filepath.Join(dir, "ghost.bin")

	v := fs.NewVerifier()

	tests := []struct {
		name    string
		outputs []domain.ResolvedOutput
		wantErr error
	}{
		{
			name:    "required present",
			outputs: []domain.ResolvedOutput{{Path: present}},
		},
		{
			name:    "required missing",
			outputs: []domain.ResolvedOutput{{Path: missing}},
			wantErr: domain.ErrMissingOutput,
		},
		{
			name:    "required empty",
			outputs: []domain.ResolvedOutput{{Path: empty}},
			wantErr: domain.ErrEmptyOutput,
		},
		{
			name:    "optional missing",
			outputs: []domain.ResolvedOutput{{Path: missing, Optional: true}},
		},
		{
			name:    "optional empty",
			outputs: []domain.ResolvedOutput{{Path: empty, Optional: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.VerifyOutputs(tt.outputs)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
