package planner

import (
	"fmt"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
)

// ConfigResolver assigns each action its configuration tag. The policy is
// fixed-wins: an action pinned to host or target keeps its pin no matter what
// the consumer requested, so shared tooling compiles once instead of once per
// consumer configuration. A mismatch is noted at warn level, never an error.
type ConfigResolver struct {
	logger ports.Logger
}

// NewConfigResolver creates a ConfigResolver. The logger may be nil.
func NewConfigResolver(logger ports.Logger) *ConfigResolver {
	return &ConfigResolver{logger: logger}
}

// Resolve returns the tag the action executes under when requested with the
// given tag. Deterministic for identical inputs; the dedup guarantee depends
// on it.
func (r *ConfigResolver) Resolve(action *domain.Action, requested domain.ConfigTag) domain.ConfigTag {
	fixed, ok := action.Config.Fixed()
	if !ok {
		return requested
	}
	if fixed != requested && r.logger != nil {
		r.logger.Warn(fmt.Sprintf("action %q is pinned to configuration %s, ignoring requested %s",
			action.Name.String(), fixed, requested))
	}
	return fixed
}
