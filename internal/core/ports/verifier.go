package ports

import "go.trai.ch/fab/internal/core/domain"

// OutputVerifier checks declared outputs after a tool invocation.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type OutputVerifier interface {
	// VerifyOutputs returns domain.ErrMissingOutput or domain.ErrEmptyOutput
	// when a required output is absent or zero bytes. Optional outputs may be
	// both.
	VerifyOutputs(outputs []domain.ResolvedOutput) error
}
