package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type collection struct {
	dimensions int
	entries    []domain.RetrievedChunk
	nextSeq    int64
}

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Search is brute-force cosine similarity.
type VectorIndex struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		collections: make(map[string]*collection),
	}
}

// Ensure creates the collection if it does not exist.
func (v *VectorIndex) Ensure(_ context.Context, name string, dimensions int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.collections[name]; !ok {
		v.collections[name] = &collection{dimensions: dimensions}
	}
	return nil
}

// Exists reports whether the collection exists.
func (v *VectorIndex) Exists(_ context.Context, name string) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.collections[name]
	return ok, nil
}

// Insert validates every chunk before storing any of them.
func (v *VectorIndex) Insert(_ context.Context, name string, chunks []domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.collections[name]
	if !ok {
		return fmt.Errorf("%w: collection %s", domain.ErrNotFound, name)
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunk.ID)
		}
		if c.dimensions > 0 && len(chunk.Embedding) != c.dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection has %d",
				domain.ErrInvalidInput, chunk.ID, len(chunk.Embedding), c.dimensions)
		}
	}

	for _, chunk := range chunks {
		stored := chunk
		stored.Embedding = append([]float32(nil), chunk.Embedding...)
		c.entries = append(c.entries, domain.RetrievedChunk{Chunk: stored, Sequence: c.nextSeq})
		c.nextSeq++
	}
	return nil
}

// Count returns the number of chunks in the collection.
func (v *VectorIndex) Count(_ context.Context, name string) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.collections[name]
	if !ok {
		return 0, nil
	}
	return len(c.entries), nil
}

// Search scores every chunk against the query.
func (v *VectorIndex) Search(_ context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	c, ok := v.collections[name]
	if !ok || k <= 0 {
		return nil, nil
	}

	results := make([]domain.RetrievedChunk, len(c.entries))
	for i, e := range c.entries {
		results[i] = e
		results[i].Score = domain.CosineSimilarity(query, e.Chunk.Embedding)
	}
	domain.RankRetrieved(results)

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Drop deletes the collection.
func (v *VectorIndex) Drop(_ context.Context, name string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.collections[name]
	delete(v.collections, name)
	return ok, nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
