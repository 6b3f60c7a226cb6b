package mcp

import (
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions.
	Chat driving.ChatService

	// Retrieval exposes raw chunk retrieval.
	Retrieval driving.RetrievalService

	// Ingest lists and fetches stored documents.
	Ingest driving.IngestService

	// Index reports collection status.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
