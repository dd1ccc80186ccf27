package driving

import "github.com/custodia-labs/wikistats/internal/core/domain"

// ConfigService builds the run configuration from persisted settings.
type ConfigService interface {
	// Load reads and validates the configuration.
	Load() (domain.Config, error)

	// Path returns where the configuration is read from.
	Path() string
}
