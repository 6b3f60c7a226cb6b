package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex with brute-force cosine search
// over embeddings stored as float32 blobs.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Ensure creates the collection if it does not exist.
func (v *vectorIndex) Ensure(ctx context.Context, collection string, dimensions int) error {
	_, err := v.store.db.ExecContext(ctx, `
		INSERT INTO collections (name, dimensions, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, collection, dimensions, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}
	return nil
}

// Exists reports whether the collection exists.
func (v *vectorIndex) Exists(ctx context.Context, collection string) (bool, error) {
	_, ok, err := v.dimensions(ctx, collection)
	return ok, err
}

// Insert writes all chunks in one transaction.
func (v *vectorIndex) Insert(ctx context.Context, collection string, chunks []domain.Chunk) error {
	dims, ok, err := v.dimensions(ctx, collection)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: collection %s", domain.ErrNotFound, collection)
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunk.ID)
		}
		if dims > 0 && len(chunk.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection has %d",
				domain.ErrInvalidInput, chunk.ID, len(chunk.Embedding), dims)
		}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (collection, chunk_id, text, source_document_id, sequence_index, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		_, err := stmt.ExecContext(ctx, collection, chunk.ID, chunk.Text,
			chunk.SourceDocumentID, chunk.SequenceIndex, float32SliceToBytes(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// Count returns the number of chunks in the collection.
func (v *vectorIndex) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Search scores every chunk in the collection against the query.
func (v *vectorIndex) Search(ctx context.Context, collection string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT seq, chunk_id, text, source_document_id, sequence_index, embedding
		FROM vectors WHERE collection = ? ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var r domain.RetrievedChunk
		var blob []byte
		if err := rows.Scan(&r.Sequence, &r.Chunk.ID, &r.Chunk.Text,
			&r.Chunk.SourceDocumentID, &r.Chunk.SequenceIndex, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		r.Chunk.Embedding, err = bytesToFloat32Slice(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", r.Chunk.ID, err)
		}
		r.Score = domain.CosineSimilarity(query, r.Chunk.Embedding)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	domain.RankRetrieved(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Drop deletes the collection and its chunks in one transaction.
func (v *vectorIndex) Drop(ctx context.Context, collection string) (bool, error) {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vectors WHERE collection = ?", collection); err != nil {
		return false, fmt.Errorf("dropping chunks of %s: %w", collection, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", collection)
	if err != nil {
		return false, fmt.Errorf("dropping collection %s: %w", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("dropping collection %s: %w", collection, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing drop of %s: %w", collection, err)
	}
	return n > 0, nil
}

// Close is a no-op; the owning Store closes the database.
func (v *vectorIndex) Close() error {
	return nil
}

func (v *vectorIndex) dimensions(ctx context.Context, collection string) (int, bool, error) {
	rows, err := v.store.db.QueryContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", collection)
	if err != nil {
		return 0, false, fmt.Errorf("reading collection %s: %w", collection, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}
	var dims int
	if err := rows.Scan(&dims); err != nil {
		return 0, false, fmt.Errorf("reading collection %s: %w", collection, err)
	}
	return dims, true, nil
}
