package planner_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports/mocks"
	"go.trai.ch/fab/internal/engine/planner"
	"go.uber.org/mock/gomock"
)

// workspace creates a layout rooted at a temp directory with the given source
// files present on disk.
func workspace(t *testing.T, sources ...string) domain.Layout {
	t.Helper()
	root := t.TempDir()
	for _, src := range sources {
		path := filepath.Join(root, src)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create source dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatalf("failed to create source file: %v", err)
		}
	}
	return domain.Layout{Root: root, OutDir: filepath.Join(root, "out")}
}

func register(t *testing.T, reg *domain.Registry, a *domain.Action) {
	t.Helper()
	if err := reg.Register(a); err != nil {
		t.Fatalf("failed to register %s: %v", a.Name.String(), err)
	}
}

func action(name, tool string, cfg domain.ConfigRequirement, inputs []string, outputs []string) *domain.Action {
	a := &domain.Action{
		Name:   domain.Intern(name),
		Tool:   domain.Intern(tool),
		Config: cfg,
	}
	for _, in := range inputs {
		a.Inputs = append(a.Inputs, domain.Intern(in))
	}
	for _, out := range outputs {
		a.Outputs = append(a.Outputs, domain.OutputSpec{Path: domain.Intern(out)})
	}
	return a
}

func newPlanner() *planner.Planner {
	return planner.NewPlanner(planner.NewConfigResolver(nil))
}

func TestPlanner_Plan_DedupSharedDependency(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("gen", "generator", domain.ConfigInherit, nil, []string{"gen.c"}))
	register(t, reg, action("app1", "cc", domain.ConfigInherit, []string{"gen.c"}, []string{"app1.bin"}))
	register(t, reg, action("app2", "cc", domain.ConfigInherit, []string{"gen.c"}, []string{"app2.bin"}))

	plan, err := newPlanner().Plan(reg, workspace(t), []string{"app1", "app2"}, domain.TagTarget)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	// Both consumers resolve gen to the same tag, so it is planned once.
	if plan.Len() != 3 {
		t.Errorf("expected 3 records, got %d", plan.Len())
	}
	genKey := domain.RecordKey{Action: domain.Intern("gen"), Tag: domain.TagTarget}
	if _, ok := plan.Record(genKey); !ok {
		t.Error("expected a single gen@target record")
	}
}

func TestPlanner_Plan_SplitConfigurations(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("lib", "cc", domain.ConfigInherit, nil, []string{"lib.a"}))
	register(t, reg, action("happ", "cc", domain.ConfigHost, []string{"lib.a"}, []string{"happ.bin"}))
	register(t, reg, action("tapp", "cc", domain.ConfigTarget, []string{"lib.a"}, []string{"tapp.bin"}))

	plan, err := newPlanner().Plan(reg, workspace(t), []string{"happ", "tapp"}, domain.TagTarget)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	// lib inherits each consumer's tag, so it exists once per tag.
	if plan.Len() != 4 {
		t.Errorf("expected 4 records, got %d", plan.Len())
	}
	for _, tag := range []domain.ConfigTag{domain.TagHost, domain.TagTarget} {
		key := domain.RecordKey{Action: domain.Intern("lib"), Tag: tag}
		if _, ok := plan.Record(key); !ok {
			t.Errorf("expected lib@%s record", tag)
		}
	}
}

func TestPlanner_Plan_FixedWinsOverRequested(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)

	reg := domain.NewRegistry()
	register(t, reg, action("protoc", "cc", domain.ConfigHost, nil, []string{"protoc.bin"}))
	register(t, reg, action("api", "protoc.bin", domain.ConfigInherit, []string{"protoc.bin"}, []string{"api.c"}))

	p := planner.NewPlanner(planner.NewConfigResolver(mockLogger))
	layout := workspace(t)
	plan, err := p.Plan(reg, layout, []string{"api"}, domain.TagTarget)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	hostKey := domain.RecordKey{Action: domain.Intern("protoc"), Tag: domain.TagHost}
	if _, ok := plan.Record(hostKey); !ok {
		t.Fatal("expected host-pinned tool to resolve to host tag under a target request")
	}

	api, _ := plan.Record(domain.RecordKey{Action: domain.Intern("api"), Tag: domain.TagTarget})
	if len(api.Deps) != 1 || api.Deps[0] != hostKey {
		t.Errorf("expected api to depend on protoc@host, got %v", api.Deps)
	}
	want := layout.OutputPath(domain.TagHost, "protoc.bin")
	if len(api.InputPaths) != 1 || api.InputPaths[0] != want {
		t.Errorf("expected input resolved under the host output root, got %v", api.InputPaths)
	}
}

func TestPlanner_Plan_FixedDedupAcrossConsumers(t *testing.T) {
	// A host-pinned generator requested from both host and target consumers
	// collapses to one record.
	reg := domain.NewRegistry()
	register(t, reg, action("gen", "generator", domain.ConfigHost, nil, []string{"gen.c"}))
	register(t, reg, action("happ", "cc", domain.ConfigHost, []string{"gen.c"}, []string{"happ.bin"}))
	register(t, reg, action("tapp", "cc", domain.ConfigTarget, []string{"gen.c"}, []string{"tapp.bin"}))

	p := planner.NewPlanner(planner.NewConfigResolver(nil))
	plan, err := p.Plan(reg, workspace(t), []string{"happ", "tapp"}, domain.TagTarget)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.Len() != 3 {
		t.Errorf("expected 3 records, got %d", plan.Len())
	}
}

func TestPlanner_Plan_SourceInput(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("compile", "cc", domain.ConfigInherit, []string{"main.c"}, []string{"app.bin"}))

	layout := workspace(t, "main.c")
	plan, err := newPlanner().Plan(reg, layout, []string{"compile"}, domain.TagTarget)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	rec, _ := plan.Record(domain.RecordKey{Action: domain.Intern("compile"), Tag: domain.TagTarget})
	if len(rec.InputPaths) != 1 || rec.InputPaths[0] != layout.SourcePath("main.c") {
		t.Errorf("expected source input under workspace root, got %v", rec.InputPaths)
	}
	if len(rec.Deps) != 0 {
		t.Errorf("source inputs must not create dependency edges, got %v", rec.Deps)
	}
	want := layout.OutputPath(domain.TagTarget, "app.bin")
	if len(rec.Outputs) != 1 || rec.Outputs[0].Path != want {
		t.Errorf("expected output under the target root, got %v", rec.Outputs)
	}
}

func TestPlanner_Plan_DanglingInput(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("compile", "cc", domain.ConfigInherit, []string{"missing.c"}, []string{"app.bin"}))

	_, err := newPlanner().Plan(reg, workspace(t), []string{"compile"}, domain.TagTarget)
	if !errors.Is(err, domain.ErrDanglingInput) {
		t.Errorf("expected ErrDanglingInput, got %v", err)
	}
}

func TestPlanner_Plan_LocationSubstitution(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("gen", "generator", domain.ConfigHost, nil, []string{"gen.bin"}))

	use := action("use", "runner", domain.ConfigInherit, nil, []string{"use.out"})
	use.Args = []domain.ArgTemplate{
		domain.ParseArg("--tool"),
		domain.ParseArg("$(location gen)"),
	}
	register(t, reg, use)

	layout := workspace(t)
	plan, err := newPlanner().Plan(reg, layout, []string{"use"}, domain.TagTarget)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	rec, _ := plan.Record(domain.RecordKey{Action: domain.Intern("use"), Tag: domain.TagTarget})
	want := layout.OutputPath(domain.TagHost, "gen.bin")
	if len(rec.Invocation.Args) != 2 || rec.Invocation.Args[1] != want {
		t.Errorf("expected argv %v to end with %q", rec.Invocation.Args, want)
	}

	// The reference also orders execution.
	genKey := domain.RecordKey{Action: domain.Intern("gen"), Tag: domain.TagHost}
	if len(rec.Deps) != 1 || rec.Deps[0] != genKey {
		t.Errorf("expected location reference to add a dependency on gen@host, got %v", rec.Deps)
	}
}

func TestPlanner_Plan_LocationUnknown(t *testing.T) {
	reg := domain.NewRegistry()
	use := action("use", "runner", domain.ConfigInherit, nil, []string{"use.out"})
	use.Args = []domain.ArgTemplate{domain.ParseArg("$(location ghost)")}
	register(t, reg, use)

	_, err := newPlanner().Plan(reg, workspace(t), []string{"use"}, domain.TagTarget)
	if !errors.Is(err, domain.ErrLocationUnknown) {
		t.Errorf("expected ErrLocationUnknown, got %v", err)
	}
}

func TestPlanner_Plan_LocationAmbiguous(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("gen", "generator", domain.ConfigInherit, nil, []string{"a.bin", "b.bin"}))

	use := action("use", "runner", domain.ConfigInherit, nil, []string{"use.out"})
	use.Args = []domain.ArgTemplate{domain.ParseArg("$(location gen)")}
	register(t, reg, use)

	_, err := newPlanner().Plan(reg, workspace(t), []string{"use"}, domain.TagTarget)
	if !errors.Is(err, domain.ErrLocationAmbiguous) {
		t.Errorf("expected ErrLocationAmbiguous, got %v", err)
	}
}

func TestPlanner_Plan_Cycle(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("a", "cc", domain.ConfigInherit, []string{"b.out"}, []string{"a.out"}))
	register(t, reg, action("b", "cc", domain.ConfigInherit, []string{"a.out"}, []string{"b.out"}))

	_, err := newPlanner().Plan(reg, workspace(t), []string{"a"}, domain.TagTarget)
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestPlanner_Plan_SelfCycle(t *testing.T) {
	reg := domain.NewRegistry()
	register(t, reg, action("ouroboros", "cc", domain.ConfigInherit, []string{"x.out"}, []string{"x.out"}))

	_, err := newPlanner().Plan(reg, workspace(t), []string{"ouroboros"}, domain.TagTarget)
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected for self-consuming action, got %v", err)
	}
}

func TestPlanner_Plan_NoTargets(t *testing.T) {
	reg := domain.NewRegistry()

	_, err := newPlanner().Plan(reg, workspace(t), nil, domain.TagTarget)
	if !errors.Is(err, domain.ErrNoTargets) {
		t.Errorf("expected ErrNoTargets, got %v", err)
	}
}

func TestPlanner_Plan_UnknownTarget(t *testing.T) {
	reg := domain.NewRegistry()

	_, err := newPlanner().Plan(reg, workspace(t), []string{"ghost"}, domain.TagTarget)
	if !errors.Is(err, domain.ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}
}
