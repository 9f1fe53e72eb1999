// Package planner turns registered actions into a deduplicated execution
// plan: one record per distinct (action, configuration tag) pair.
package planner

import (
	"os"
	"slices"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/zerr"
)

// Planner builds execution plans from an action registry.
type Planner struct {
	resolver *ConfigResolver
}

// NewPlanner creates a new Planner.
func NewPlanner(resolver *ConfigResolver) *Planner {
	return &Planner{resolver: resolver}
}

// Plan expands the requested targets under the requested configuration tag
// into a validated plan. All structural errors (unknown target, dangling
// input, bad location reference, cycle) surface here, before anything runs.
func (p *Planner) Plan(
	reg *domain.Registry,
	layout domain.Layout,
	targets []string,
	requested domain.ConfigTag,
) (*domain.Plan, error) {
	if len(targets) == 0 {
		return nil, domain.ErrNoTargets
	}

	plan := domain.NewPlan()
	for _, target := range targets {
		action, err := reg.Lookup(domain.Intern(target))
		if err != nil {
			return nil, err
		}
		key, err := p.expand(plan, reg, layout, action, requested)
		if err != nil {
			return nil, err
		}
		plan.AddTarget(key)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// expand materializes the record for (action, requested) and, transitively,
// records for everything it depends on. Two consumers resolving to the same
// (action, tag) pair share one record: the record is registered before its
// dependencies are expanded, and a later request finds it by key.
func (p *Planner) expand(
	plan *domain.Plan,
	reg *domain.Registry,
	layout domain.Layout,
	action *domain.Action,
	requested domain.ConfigTag,
) (domain.RecordKey, error) {
	resolved := p.resolver.Resolve(action, requested)
	key := domain.RecordKey{Action: action.Name, Tag: resolved}
	if _, ok := plan.Record(key); ok {
		return key, nil
	}

	rec := &domain.ExecutionRecord{
		Key:    key,
		Action: action,
		Status: domain.StatusPending,
	}
	if err := plan.Add(rec); err != nil {
		return key, err
	}

	if err := p.expandInputs(plan, reg, layout, rec, resolved); err != nil {
		return key, err
	}
	if err := p.resolveInvocation(plan, reg, layout, rec, resolved); err != nil {
		return key, err
	}

	for _, out := range action.Outputs {
		rec.Outputs = append(rec.Outputs, domain.ResolvedOutput{
			Path:     layout.OutputPath(resolved, out.Path.String()),
			Optional: out.Optional,
		})
	}

	return key, nil
}

// expandInputs links declared inputs either to the producing action's record
// or to a source file on disk.
func (p *Planner) expandInputs(
	plan *domain.Plan,
	reg *domain.Registry,
	layout domain.Layout,
	rec *domain.ExecutionRecord,
	tag domain.ConfigTag,
) error {
	for _, input := range rec.Action.Inputs {
		producer, ok := reg.Producer(input)
		if !ok {
			src := layout.SourcePath(input.String())
			if _, err := os.Stat(src); err != nil {
				dangling := zerr.With(domain.ErrDanglingInput, "action", rec.Action.Name.String())
				return zerr.With(dangling, "input", input.String())
			}
			rec.InputPaths = append(rec.InputPaths, src)
			continue
		}

		depKey, err := p.expand(plan, reg, layout, producer, tag)
		if err != nil {
			return err
		}
		p.addDep(rec, depKey)
		rec.InputPaths = append(rec.InputPaths, layout.OutputPath(depKey.Tag, input.String()))
	}
	return nil
}

// resolveInvocation substitutes location placeholders and freezes the argv.
// A location reference also becomes a dependency edge, so the referenced
// output always exists before the argv is used.
func (p *Planner) resolveInvocation(
	plan *domain.Plan,
	reg *domain.Registry,
	layout domain.Layout,
	rec *domain.ExecutionRecord,
	tag domain.ConfigTag,
) error {
	args := make([]string, 0, len(rec.Action.Args))
	for _, tmpl := range rec.Action.Args {
		arg, err := tmpl.Resolve(func(name domain.InternedString) (string, error) {
			return p.locationPath(plan, reg, layout, rec, tag, name)
		})
		if err != nil {
			return zerr.With(err, "action", rec.Action.Name.String())
		}
		args = append(args, arg)
	}

	rec.Invocation = domain.Invocation{
		Tool: rec.Action.Tool.String(),
		Args: args,
		Dir:  layout.Root,
	}
	return nil
}

func (p *Planner) locationPath(
	plan *domain.Plan,
	reg *domain.Registry,
	layout domain.Layout,
	rec *domain.ExecutionRecord,
	tag domain.ConfigTag,
	name domain.InternedString,
) (string, error) {
	ref, err := reg.Lookup(name)
	if err != nil {
		return "", zerr.With(domain.ErrLocationUnknown, "reference", name.String())
	}
	required := ref.RequiredOutputs()
	if len(required) != 1 {
		ambiguous := zerr.With(domain.ErrLocationAmbiguous, "reference", name.String())
		return "", zerr.With(ambiguous, "outputs", len(required))
	}

	depKey, err := p.expand(plan, reg, layout, ref, tag)
	if err != nil {
		return "", err
	}
	p.addDep(rec, depKey)

	return layout.OutputPath(depKey.Tag, required[0].String()), nil
}

// addDep records an edge, keeping self-edges so Validate reports an action
// consuming its own output as a cycle.
func (p *Planner) addDep(rec *domain.ExecutionRecord, dep domain.RecordKey) {
	if !slices.Contains(rec.Deps, dep) {
		rec.Deps = append(rec.Deps, dep)
	}
}
