package ports

import "go.trai.ch/fab/internal/core/domain"

// ConfigLoader reads the action declaration file into a registry.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load parses the declaration file at path.
	Load(path string) (*domain.Registry, error)
}
