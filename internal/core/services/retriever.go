package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
	"github.com/custodia-labs/medichat/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// contextSeparator joins chunk texts into a prompt context.
const contextSeparator = "\n\n"

// Retriever finds the chunks most similar to a query.
type Retriever struct {
	index      driven.VectorIndex
	embedder   driven.EmbeddingService
	collection string
}

// NewRetriever creates a retriever over the named collection.
func NewRetriever(index driven.VectorIndex, embedder driven.EmbeddingService, collection string) *Retriever {
	if collection == "" {
		collection = domain.DefaultCollectionName
	}
	return &Retriever{
		index:      index,
		embedder:   embedder,
		collection: collection,
	}
}

// Retrieve returns min(k, count) chunks by descending similarity; equal
// scores keep insertion order. An absent or empty collection returns no
// chunks without contacting the embedding service.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	count, err := r.index.Count(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if count == 0 {
		logger.Debug("collection %s is empty, nothing to retrieve", r.collection)
		return []domain.RetrievedChunk{}, nil
	}

	if r.embedder == nil {
		return nil, fmt.Errorf("%w: embedding service not configured", domain.ErrEmbeddingService)
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, asEmbeddingError(err)
	}

	results, err := r.index.Search(ctx, r.collection, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	domain.RankRetrieved(results)
	if len(results) > k {
		results = results[:k]
	}

	logger.Debug("retrieved %d of %d chunks for %q", len(results), count, query)
	return results, nil
}

// AssembleContext joins chunk texts with a blank line, in the given order.
func (r *Retriever) AssembleContext(chunks []domain.RetrievedChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Text
	}
	return strings.Join(texts, contextSeparator)
}
