package cas_test

import (
	"path/filepath"
	"testing"

	"go.trai.ch/fab/internal/adapters/cas"
)

func TestFactory_Open(t *testing.T) {
	store, err := cas.Factory{}.Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if store == nil {
		t.Fatal("Open returned nil store")
	}
}
