package domain

import "go.trai.ch/zerr"

// ConfigTag labels the build variant an execution record belongs to. Records
// of the same action under different tags are distinct; under the same tag
// they collapse into one.
type ConfigTag string

const (
	// TagHost is the configuration of the machine running the build.
	TagHost ConfigTag = "host"
	// TagTarget is the configuration of the final artifacts.
	TagTarget ConfigTag = "target"
)

// ParseConfigTag parses a user-supplied configuration tag.
func ParseConfigTag(s string) (ConfigTag, error) {
	switch ConfigTag(s) {
	case TagHost, TagTarget:
		return ConfigTag(s), nil
	}
	return "", zerr.With(ErrUnknownConfiguration, "configuration", s)
}

// ConfigRequirement is an action's declared configuration constraint. A fixed
// requirement pins every execution of the action to one tag; Inherit lets the
// consumer's tag propagate.
type ConfigRequirement string

const (
	// ConfigHost pins the action to the host configuration.
	ConfigHost ConfigRequirement = "host"
	// ConfigTarget pins the action to the target configuration.
	ConfigTarget ConfigRequirement = "target"
	// ConfigInherit adopts the tag of whichever record requested the action.
	ConfigInherit ConfigRequirement = "inherit"
)

// ParseConfigRequirement parses a declared configuration requirement. The
// empty string defaults to Inherit.
func ParseConfigRequirement(s string) (ConfigRequirement, error) {
	switch ConfigRequirement(s) {
	case ConfigHost, ConfigTarget, ConfigInherit:
		return ConfigRequirement(s), nil
	case "":
		return ConfigInherit, nil
	}
	return "", zerr.With(ErrUnknownConfiguration, "configuration", s)
}

// Fixed reports whether the requirement pins a tag, and which one.
func (r ConfigRequirement) Fixed() (ConfigTag, bool) {
	switch r {
	case ConfigHost:
		return TagHost, true
	case ConfigTarget:
		return TagTarget, true
	}
	return "", false
}
