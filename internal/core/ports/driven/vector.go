package driven

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// VectorIndex stores chunk embeddings in named collections and serves
// similarity search over them.
type VectorIndex interface {
	// Ensure creates the collection if it does not exist.
	// Dimensions is the embedding size; existing collections are left unchanged.
	Ensure(ctx context.Context, collection string, dimensions int) error

	// Exists reports whether the collection exists.
	Exists(ctx context.Context, collection string) (bool, error)

	// Insert writes all chunks in a single atomic operation.
	// Either every chunk is stored or none is. Every chunk must carry an embedding.
	// Returns domain.ErrNotFound if the collection does not exist.
	Insert(ctx context.Context, collection string, chunks []domain.Chunk) error

	// Count returns the number of stored chunks; 0 for a missing collection.
	Count(ctx context.Context, collection string) (int, error)

	// Search returns up to k chunks ordered by descending cosine similarity.
	// Equal scores keep insertion order. A missing collection yields no results.
	Search(ctx context.Context, collection string, query []float32, k int) ([]domain.RetrievedChunk, error)

	// Drop deletes the collection and all its chunks.
	// Returns false if the collection did not exist.
	Drop(ctx context.Context, collection string) (bool, error)

	// Close releases resources.
	Close() error
}
