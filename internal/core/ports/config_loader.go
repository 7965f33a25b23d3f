package ports

import "go.trai.ch/augur/internal/core/domain"

// ConfigLoader defines the interface for loading the effective settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves defaults, the optional config file and environment overrides.
	Load() (domain.Settings, error)
}
