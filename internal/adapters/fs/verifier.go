package fs

import (
	"os"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputVerifier = (*Verifier)(nil)

// Verifier checks declared outputs after a tool invocation.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyOutputs checks that every required output exists and is non-empty.
// Optional outputs may be absent or zero bytes.
func (v *Verifier) VerifyOutputs(outputs []domain.ResolvedOutput) error {
	for _, out := range outputs {
		info, err := os.Stat(out.Path)
		if err != nil {
			if os.IsNotExist(err) {
				if out.Optional {
					continue
				}
				return zerr.With(domain.ErrMissingOutput, "path", out.Path)
			}
			return zerr.With(zerr.Wrap(err, "failed to stat output"), "path", out.Path)
		}
		if info.Size() == 0 && !out.Optional {
			return zerr.With(domain.ErrEmptyOutput, "path", out.Path)
		}
	}
	return nil
}
