package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// objectStore implements driven.ObjectStore.
type objectStore struct {
	store *Store
}

var _ driven.ObjectStore = (*objectStore)(nil)

// Exists reports whether the key is present.
func (o *objectStore) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	err := o.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects WHERE key = ?", key).Scan(&n)
	if err != nil {
		return false, unavailable("checking object", err)
	}
	return n > 0, nil
}

// Put stores data under key, replacing any existing object.
func (o *objectStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if data == nil {
		data = []byte{}
	}
	_, err := o.store.db.ExecContext(ctx, `
		INSERT INTO objects (key, data, size, modified_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			modified_at = excluded.modified_at
	`, key, data, len(data), time.Now().UTC())
	if err != nil {
		return "", unavailable("storing object", err)
	}
	return locationURL(key), nil
}

// List returns metadata for every object, ordered by key.
func (o *objectStore) List(ctx context.Context) ([]domain.StoredDocument, error) {
	rows, err := o.store.db.QueryContext(ctx, "SELECT key, size, modified_at FROM objects ORDER BY key")
	if err != nil {
		return nil, unavailable("listing objects", err)
	}
	defer rows.Close()

	var docs []domain.StoredDocument
	for rows.Next() {
		doc, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("listing objects", err)
	}
	return docs, nil
}

// Get returns the object bytes.
func (o *objectStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := o.store.db.QueryRowContext(ctx, "SELECT data FROM objects WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, unavailable("reading object", err)
	}
	return data, nil
}

// Stat returns metadata for a single object.
func (o *objectStore) Stat(ctx context.Context, key string) (*domain.StoredDocument, error) {
	row := o.store.db.QueryRowContext(ctx, "SELECT key, size, modified_at FROM objects WHERE key = ?", key)
	doc, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return doc, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(row scanner) (*domain.StoredDocument, error) {
	var doc domain.StoredDocument
	if err := row.Scan(&doc.Key, &doc.SizeBytes, &doc.LastModified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, unavailable("scanning object", err)
	}
	doc.Filename = domain.FilenameFromKey(doc.Key)
	doc.LocationURL = locationURL(doc.Key)
	return &doc, nil
}

func locationURL(key string) string {
	return "sqlite://" + key
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
