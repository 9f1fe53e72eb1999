package domain

// OutputSpec is one declared output path of an action. Optional outputs may
// be absent or empty after execution without failing the record.
type OutputSpec struct {
	Path     InternedString
	Optional bool
}

// Action is a declared unit of work: a tool invocation transforming input
// files into output files. Actions are immutable after registration.
type Action struct {
	Name    InternedString
	Inputs  []InternedString
	Outputs []OutputSpec
	Tool    InternedString
	Args    []ArgTemplate
	Config  ConfigRequirement
}

// RequiredOutputs returns the non-optional output paths.
func (a *Action) RequiredOutputs() []InternedString {
	var req []InternedString
	for _, out := range a.Outputs {
		if !out.Optional {
			req = append(req, out.Path)
		}
	}
	return req
}
