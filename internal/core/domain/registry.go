package domain

import "go.trai.ch/zerr"

// Registry holds the declared actions of one build, indexed by name and by
// produced output path.
type Registry struct {
	actions   map[InternedString]*Action
	producers map[InternedString]InternedString
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:   make(map[InternedString]*Action),
		producers: make(map[InternedString]InternedString),
	}
}

// Register adds an action. It fails if the name is already taken or if one of
// its outputs is already produced by another action.
func (r *Registry) Register(a *Action) error {
	if _, exists := r.actions[a.Name]; exists {
		return zerr.With(ErrActionExists, "action", a.Name.String())
	}
	for _, out := range a.Outputs {
		if other, exists := r.producers[out.Path]; exists {
			err := zerr.With(zerr.Wrap(ErrActionExists, "output produced by two actions"), "action", a.Name.String())
			err = zerr.With(err, "other_action", other.String())
			return zerr.With(err, "output", out.Path.String())
		}
	}
	r.actions[a.Name] = a
	for _, out := range a.Outputs {
		r.producers[out.Path] = a.Name
	}
	return nil
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name InternedString) (*Action, error) {
	a, ok := r.actions[name]
	if !ok {
		return nil, zerr.With(ErrActionNotFound, "action", name.String())
	}
	return a, nil
}

// Producer returns the action producing the given output path, if any.
func (r *Registry) Producer(path InternedString) (*Action, bool) {
	name, ok := r.producers[path]
	if !ok {
		return nil, false
	}
	return r.actions[name], true
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.actions)
}
