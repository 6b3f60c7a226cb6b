// Package tui provides an interactive terminal user interface for medichat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat handles conversation turns.
	Chat driving.ChatService

	// Ingest lists and re-processes stored documents.
	Ingest driving.IngestService

	// Index reports the vector index status. Optional.
	Index driving.IndexService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(chat driving.ChatService, ingest driving.IngestService) *Ports {
	return &Ports{
		Chat:   chat,
		Ingest: ingest,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	return nil
}
