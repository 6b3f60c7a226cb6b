package driving

import "github.com/custodia-labs/medichat/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then environment overrides.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single key in the config file.
	Set(key, value string) error

	// Keys returns every settable key.
	Keys() []string

	// Values returns the effective value of every settable key, sorted by key.
	Values() ([]Setting, error)

	// Validate checks the effective settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig pings the configured embedding endpoint.
	ValidateEmbeddingConfig() error

	// ValidateCompletionConfig pings the configured completion endpoint.
	ValidateCompletionConfig() error
}

// Setting is one effective key/value pair.
type Setting struct {
	Key   string
	Value string

	// Secret marks API keys and passwords that must be masked on display.
	Secret bool
}
