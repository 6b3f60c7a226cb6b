package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/logger"
)

// ContentGateway deduplicates and persists original documents in the
// object store. Keys derive from the filename, so uploading the same
// filename twice is a no-op.
type ContentGateway struct {
	store driven.ObjectStore
}

// NewContentGateway creates a gateway over the given object store.
func NewContentGateway(store driven.ObjectStore) *ContentGateway {
	return &ContentGateway{store: store}
}

// Exists reports whether a document is stored under key.
func (g *ContentGateway) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := g.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	return exists, nil
}

// Upload stores data under the key derived from filename.
// If the key already exists nothing is written and the existing record is
// returned with created=false.
func (g *ContentGateway) Upload(ctx context.Context, filename string, data []byte) (*domain.StoredDocument, bool, error) {
	key := domain.DocumentKey(filename)
	if key == domain.DocumentKeyPrefix {
		return nil, false, fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}

	exists, err := g.Exists(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if exists {
		existing, err := g.store.Stat(ctx, key)
		if err != nil {
			return nil, false, fmt.Errorf("stat %s: %w", key, err)
		}
		logger.Debug("%s already stored, skipping upload", key)
		return existing, false, nil
	}

	url, err := g.store.Put(ctx, key, data)
	if err != nil {
		return nil, false, fmt.Errorf("upload %s: %w", key, err)
	}
	logger.Debug("uploaded %s (%d bytes)", key, len(data))

	return &domain.StoredDocument{
		Key:          key,
		Filename:     domain.FilenameFromKey(key),
		SizeBytes:    int64(len(data)),
		LastModified: time.Now(),
		LocationURL:  url,
	}, true, nil
}

// List returns every stored document.
func (g *ContentGateway) List(ctx context.Context) ([]domain.StoredDocument, error) {
	docs, err := g.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Fetch returns the bytes of a stored document.
func (g *ContentGateway) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	return data, nil
}
