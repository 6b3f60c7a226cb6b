package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/logger"
)

// dimensionProbe is embedded to learn the vector size of models that do
// not advertise it.
const dimensionProbe = "dimension probe"

// IndexManager owns the lifecycle of one vector collection:
// Absent -> Empty on Ensure, Empty/Populated on InsertBatch, and back to
// Absent on Clear. It is the single writer of the collection.
type IndexManager struct {
	index      driven.VectorIndex
	embedder   driven.EmbeddingService
	collection string
	batchSize  int
	limiter    *rate.Limiter
}

// IndexOption configures an IndexManager.
type IndexOption func(*IndexManager)

// WithBatchSize bounds the number of texts per embedding request.
func WithBatchSize(n int) IndexOption {
	return func(m *IndexManager) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithEmbedRateLimit throttles embedding requests to rps per second.
// Zero or negative disables throttling.
func WithEmbedRateLimit(rps float64) IndexOption {
	return func(m *IndexManager) {
		if rps > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewIndexManager creates a manager for the named collection.
func NewIndexManager(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	collection string,
	opts ...IndexOption,
) *IndexManager {
	if collection == "" {
		collection = domain.DefaultCollectionName
	}
	m := &IndexManager{
		index:      index,
		embedder:   embedder,
		collection: collection,
		batchSize:  domain.DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Collection returns the managed collection name.
func (m *IndexManager) Collection() string {
	return m.collection
}

// EmbeddingModel returns the name of the embedding model.
func (m *IndexManager) EmbeddingModel() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}

// Ensure creates the collection if it is absent and returns its current shape.
func (m *IndexManager) Ensure(ctx context.Context) (*domain.IndexCollection, error) {
	exists, err := m.index.Exists(ctx, m.collection)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}

	if !exists {
		dims, err := m.dimensions(ctx)
		if err != nil {
			return nil, err
		}
		if err := m.index.Ensure(ctx, m.collection, dims); err != nil {
			return nil, fmt.Errorf("create collection: %w", err)
		}
		logger.Info("created collection %s (%d dimensions)", m.collection, dims)
	}

	count, err := m.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.IndexCollection{Name: m.collection, ChunkCount: count}, nil
}

// InsertBatch embeds the chunks and inserts them in one atomic write.
// Either every chunk is inserted or none is; chunks are not deduplicated.
// Embedding failures are returned as domain.ErrEmbeddingService and are
// not retried.
func (m *IndexManager) InsertBatch(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if m.embedder == nil {
		return 0, fmt.Errorf("%w: embedding service not configured", domain.ErrEmbeddingService)
	}
	if _, err := m.Ensure(ctx); err != nil {
		return 0, err
	}

	defer logger.Elapsed(fmt.Sprintf("insert %d chunks", len(chunks)), time.Now())

	embedded := make([]domain.Chunk, len(chunks))
	copy(embedded, chunks)

	for start := 0; start < len(embedded); start += m.batchSize {
		end := min(start+m.batchSize, len(embedded))

		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return 0, err
			}
		}

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = embedded[start+i].Text
		}

		vectors, err := m.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, asEmbeddingError(err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingService, len(vectors), len(texts))
		}
		for i, vec := range vectors {
			embedded[start+i].Embedding = vec
		}
		logger.Debug("embedded chunks %d-%d of %d", start+1, end, len(embedded))
	}

	if err := m.index.Insert(ctx, m.collection, embedded); err != nil {
		return 0, fmt.Errorf("insert chunks: %w", err)
	}
	return len(embedded), nil
}

// Count returns the number of indexed chunks; 0 when the collection is absent.
func (m *IndexManager) Count(ctx context.Context) (int, error) {
	count, err := m.index.Count(ctx, m.collection)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// State returns the lifecycle state of the collection.
func (m *IndexManager) State(ctx context.Context) (domain.IndexState, error) {
	exists, err := m.index.Exists(ctx, m.collection)
	if err != nil {
		return domain.IndexAbsent, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		return domain.IndexAbsent, nil
	}
	count, err := m.Count(ctx)
	if err != nil {
		return domain.IndexAbsent, err
	}
	return domain.StateOf(true, count), nil
}

// Clear drops the collection and every chunk in it.
// Returns false if there was nothing to drop.
func (m *IndexManager) Clear(ctx context.Context) (bool, error) {
	dropped, err := m.index.Drop(ctx, m.collection)
	if err != nil {
		return false, fmt.Errorf("drop collection: %w", err)
	}
	logger.Info("cleared collection %s", m.collection)
	return dropped, nil
}

// dimensions returns the embedding size, probing the service when the
// model does not advertise one.
func (m *IndexManager) dimensions(ctx context.Context) (int, error) {
	if m.embedder == nil {
		return 0, nil
	}
	if dims := m.embedder.Dimensions(); dims > 0 {
		return dims, nil
	}

	vec, err := m.embedder.Embed(ctx, dimensionProbe)
	if err != nil {
		return 0, asEmbeddingError(err)
	}
	return len(vec), nil
}

func asEmbeddingError(err error) error {
	if errors.Is(err, domain.ErrEmbeddingService) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
}
