package driven

import "github.com/custodia-labs/medichat/internal/core/domain"

// AIConfigValidator validates model endpoint configurations by testing
// connectivity to the underlying services.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding endpoint.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config domain.ProviderSettings) error

	// ValidateCompletion pings the completion endpoint.
	// Returns nil if configuration is valid or not configured.
	ValidateCompletion(config domain.ProviderSettings) error
}
