// Package ai provides factory functions for creating model service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	openaiembed "github.com/custodia-labs/medichat/internal/adapters/driven/embedding/openai"
	openaillm "github.com/custodia-labs/medichat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the model services built from settings.
type InitResult struct {
	EmbeddingService  driven.EmbeddingService
	CompletionService driven.CompletionService
	Warnings          []string // Non-fatal configuration problems.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.CompletionService != nil {
		r.CompletionService.Close()
	}
}

// Init builds both model services without contacting them.
// A service that cannot be built is left nil and reported in Warnings;
// operations that need it fail with the matching service error.
func Init(settings domain.AppSettings) *InitResult {
	result := &InitResult{}

	embed, err := CreateEmbeddingService(settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	case embed == nil:
		result.Warnings = append(result.Warnings, "embedding: endpoint not configured")
	default:
		result.EmbeddingService = embed
	}

	completion, err := CreateCompletionService(settings.Completion)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("completion: %v", err))
	case completion == nil:
		result.Warnings = append(result.Warnings, "completion: endpoint not configured")
	default:
		result.CompletionService = completion
	}

	return result
}

// CreateEmbeddingService creates an embedding service for an OpenAI-compatible endpoint.
// Returns nil if the endpoint is not configured.
func CreateEmbeddingService(settings domain.ProviderSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		BaseURL: settings.BaseURL,
		APIKey:  settings.APIKey,
		Model:   settings.Model,
	})
}

// CreateCompletionService creates a completion service for an OpenAI-compatible endpoint.
// Returns nil if the endpoint is not configured.
func CreateCompletionService(settings domain.ProviderSettings) (driven.CompletionService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}
	return openaillm.NewCompletionService(openaillm.Config{
		BaseURL: settings.BaseURL,
		APIKey:  settings.APIKey,
		Model:   settings.Model,
	})
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(settings domain.ProviderSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w. Run 'medichat settings check' after fixing the endpoint", err)
	}
	return nil
}

// ValidateCompletionConfig creates a completion service and pings it.
func ValidateCompletionConfig(settings domain.ProviderSettings) error {
	svc, err := CreateCompletionService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w. Run 'medichat settings check' after fixing the endpoint", err)
	}
	return nil
}
