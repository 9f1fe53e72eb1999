package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/fab/internal/adapters/config"
	"go.trai.ch/fab/internal/core/domain"
)

func writeFabfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fab.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fabfile: %v", err)
	}
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeFabfile(t, `version: "1"
actions:
  protoc:
    tool: bin/protoc
    outputs: [protoc.bin]
    configuration: host
  api:
    inputs: [api.proto, api.proto]
    outputs: [api.c]
    optionalOutputs: [api.log]
    tool: bin/protoc
    args: ["--plugin", "$(location protoc)", "-o", "api.c"]
`)

	reg, err := config.NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 actions, got %d", reg.Len())
	}

	protoc, err := reg.Lookup(domain.Intern("protoc"))
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if protoc.Config != domain.ConfigHost {
		t.Errorf("protoc configuration = %q, want host", protoc.Config)
	}

	api, err := reg.Lookup(domain.Intern("api"))
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if api.Config != domain.ConfigInherit {
		t.Errorf("omitted configuration should default to inherit, got %q", api.Config)
	}
	if len(api.Inputs) != 1 {
		t.Errorf("duplicate inputs should be deduplicated, got %v", api.Inputs)
	}
	if len(api.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(api.Outputs))
	}
	if required := api.RequiredOutputs(); len(required) != 1 || required[0].String() != "api.c" {
		t.Errorf("unexpected required outputs: %v", required)
	}
	if len(api.Args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(api.Args))
	}
	if api.Args[0].IsLocation() {
		t.Error("literal arg parsed as location")
	}
	if !api.Args[1].IsLocation() || api.Args[1].Location.String() != "protoc" {
		t.Errorf("expected $(location protoc) placeholder, got %+v", api.Args[1])
	}
}

func TestLoader_Load_ReservedName(t *testing.T) {
	path := writeFabfile(t, `actions:
  all:
    tool: cc
`)
	_, err := config.NewLoader().Load(path)
	if err == nil {
		t.Error("expected error for reserved action name, got nil")
	}
}

func TestLoader_Load_MissingTool(t *testing.T) {
	path := writeFabfile(t, `actions:
  broken:
    outputs: [a.bin]
`)
	_, err := config.NewLoader().Load(path)
	if err == nil {
		t.Error("expected error for action without tool, got nil")
	}
}

func TestLoader_Load_UnknownConfiguration(t *testing.T) {
	path := writeFabfile(t, `actions:
  broken:
    tool: cc
    configuration: debug
`)
	_, err := config.NewLoader().Load(path)
	if !errors.Is(err, domain.ErrUnknownConfiguration) {
		t.Errorf("expected ErrUnknownConfiguration, got %v", err)
	}
}

func TestLoader_Load_DuplicateOutputProducers(t *testing.T) {
	path := writeFabfile(t, `actions:
  one:
    tool: cc
    outputs: [shared.bin]
  two:
    tool: cc
    outputs: [shared.bin]
`)
	_, err := config.NewLoader().Load(path)
	if !errors.Is(err, domain.ErrActionExists) {
		t.Errorf("expected ErrActionExists, got %v", err)
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := config.NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoader_Load_InvalidYAML(t *testing.T) {
	path := writeFabfile(t, "actions: [not a map")
	_, err := config.NewLoader().Load(path)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}
