package ai

import (
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates model endpoint configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the embedding endpoint.
func (v *ConfigValidator) ValidateEmbedding(config domain.ProviderSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateCompletion pings the completion endpoint.
func (v *ConfigValidator) ValidateCompletion(config domain.ProviderSettings) error {
	return ValidateCompletionConfig(config)
}
