// Package config provides the YAML action declaration loader.
package config

import (
	"os"
	"slices"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader reads fab.yaml files into an action registry.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the declaration file at path.
func (l *Loader) Load(path string) (*domain.Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is provided by the user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read declaration file")
	}

	var fabfile Fabfile
	if err := yaml.Unmarshal(data, &fabfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse declaration file")
	}

	reg := domain.NewRegistry()
	for name, dto := range fabfile.Actions {
		action, err := l.toAction(name, dto)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(action); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (l *Loader) toAction(name string, dto ActionDTO) (*domain.Action, error) {
	if name == "all" {
		return nil, zerr.With(zerr.New("action name 'all' is reserved"), "action", name)
	}
	if dto.Tool == "" {
		return nil, zerr.With(zerr.New("action declares no tool"), "action", name)
	}

	cfg, err := domain.ParseConfigRequirement(dto.Configuration)
	if err != nil {
		return nil, zerr.With(err, "action", name)
	}

	args := make([]domain.ArgTemplate, len(dto.Args))
	for i, arg := range dto.Args {
		args[i] = domain.ParseArg(arg)
	}

	outputs := make([]domain.OutputSpec, 0, len(dto.Outputs)+len(dto.OptionalOutputs))
	for _, out := range canonicalize(dto.Outputs) {
		outputs = append(outputs, domain.OutputSpec{Path: domain.Intern(out)})
	}
	for _, out := range canonicalize(dto.OptionalOutputs) {
		outputs = append(outputs, domain.OutputSpec{Path: domain.Intern(out), Optional: true})
	}

	return &domain.Action{
		Name:    domain.Intern(name),
		Inputs:  internAll(canonicalize(dto.Inputs)),
		Outputs: outputs,
		Tool:    domain.Intern(dto.Tool),
		Args:    args,
		Config:  cfg,
	}, nil
}

func internAll(strs []string) []domain.InternedString {
	res := make([]domain.InternedString, len(strs))
	for i, s := range strs {
		res[i] = domain.Intern(s)
	}
	return res
}

// canonicalize sorts and deduplicates declared path lists so equivalent
// declarations produce identical actions.
func canonicalize(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := make([]string, len(strs))
	copy(sorted, strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
