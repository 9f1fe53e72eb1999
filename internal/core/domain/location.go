package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ArgTemplate is a single argv element: either a literal string or a
// "$(location <action>)" placeholder standing for the sole output path of the
// named action. Keeping the two cases in a closed type makes substitution
// failures typed instead of string-interpolation surprises.
type ArgTemplate struct {
	Literal  string
	Location InternedString
}

const (
	locationPrefix = "$(location "
	locationSuffix = ")"
)

// ParseArg parses one declared argv element into a template. Only the
// whole-argument form "$(location name)" is recognized; anything else is a
// literal.
func ParseArg(s string) ArgTemplate {
	if strings.HasPrefix(s, locationPrefix) && strings.HasSuffix(s, locationSuffix) {
		name := strings.TrimSuffix(strings.TrimPrefix(s, locationPrefix), locationSuffix)
		name = strings.TrimSpace(name)
		if name != "" {
			return ArgTemplate{Location: Intern(name)}
		}
	}
	return ArgTemplate{Literal: s}
}

// IsLocation reports whether the template is a location placeholder.
func (t ArgTemplate) IsLocation() bool {
	return t.Location != InternedString{}
}

// Resolve produces the final argv string, looking placeholder paths up in the
// supplied table.
func (t ArgTemplate) Resolve(lookup func(InternedString) (string, error)) (string, error) {
	if !t.IsLocation() {
		return t.Literal, nil
	}
	path, err := lookup(t.Location)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve location reference"), "reference", t.Location.String())
	}
	return path, nil
}
