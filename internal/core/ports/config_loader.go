package ports

import "github.com/carve-build/carve/internal/core/domain"

// ConfigLoader defines the interface for loading the planning configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration discovered at or above cwd and returns
	// the validated build config.
	Load(cwd string) (*domain.BuildConfig, error)

	// DiscoverRoot walks up from cwd to find the directory containing the
	// configuration file.
	DiscoverRoot(cwd string) (string, error)
}
