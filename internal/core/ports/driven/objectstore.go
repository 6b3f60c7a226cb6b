package driven

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// ObjectStore persists original document bytes keyed by object key.
// Implementations wrap unreachable backends in domain.ErrStoreUnavailable
// and missing keys in domain.ErrNotFound.
type ObjectStore interface {
	// Exists reports whether an object is present without downloading it.
	Exists(ctx context.Context, key string) (bool, error)

	// Put writes an object and returns its location URL.
	// Overwrites any existing object with the same key.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// List returns metadata for every stored object. Order is unspecified.
	List(ctx context.Context) ([]domain.StoredDocument, error)

	// Get downloads an object.
	Get(ctx context.Context, key string) ([]byte, error)

	// Stat returns metadata for a single object.
	Stat(ctx context.Context, key string) (*domain.StoredDocument, error)
}
