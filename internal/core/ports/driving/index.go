package driving

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// IndexService reports on and resets the vector index.
type IndexService interface {
	// Status returns the current collection state.
	Status(ctx context.Context) (*IndexStatus, error)

	// Clear drops the collection. Stored documents are untouched.
	Clear(ctx context.Context) error
}

// IndexStatus describes the vector index for display.
type IndexStatus struct {
	// Collection is the collection name.
	Collection string

	// State is absent, empty or populated.
	State domain.IndexState

	// ChunkCount is the number of indexed chunks.
	ChunkCount int

	// DocumentCount is the number of documents in the content store.
	DocumentCount int

	// EmbeddingModel is the model that produced the vectors.
	EmbeddingModel string
}
