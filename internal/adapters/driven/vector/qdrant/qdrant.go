// Package qdrant implements driven.VectorIndex over the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

const defaultTimeout = 15 * time.Second

// errCollectionMissing is returned by do for 404 responses.
var errCollectionMissing = errors.New("collection not found")

// Config holds connection settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Index is a minimal REST client to Qdrant.
// Collections use cosine distance. Each point carries its insertion
// sequence in the payload so ties can be ordered.
type Index struct {
	url    string
	apiKey string
	client *http.Client
}

// New creates a Qdrant index client.
func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: qdrant url is required", domain.ErrInvalidConfiguration)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Index{
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload payload   `json:"payload"`
}

type payload struct {
	ChunkID          string `json:"chunk_id"`
	Text             string `json:"text"`
	SourceDocumentID string `json:"source_document_id"`
	SequenceIndex    int    `json:"sequence_index"`
	Seq              int64  `json:"seq"`
}

// Ensure creates the collection if it does not exist.
func (q *Index) Ensure(ctx context.Context, collection string, dimensions int) error {
	exists, err := q.Exists(ctx, collection)
	if err != nil || exists {
		return err
	}
	if dimensions <= 0 {
		return fmt.Errorf("%w: collection %s needs positive dimensions", domain.ErrInvalidInput, collection)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	return q.do(ctx, http.MethodPut, q.collectionPath(collection), body, nil)
}

// Exists reports whether the collection exists.
func (q *Index) Exists(ctx context.Context, collection string) (bool, error) {
	err := q.do(ctx, http.MethodGet, q.collectionPath(collection), nil, nil)
	if errors.Is(err, errCollectionMissing) {
		return false, nil
	}
	return err == nil, err
}

// Insert upserts all chunks in a single request and waits for it to apply.
func (q *Index) Insert(ctx context.Context, collection string, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunk.ID)
		}
	}

	exists, err := q.Exists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: collection %s", domain.ErrNotFound, collection)
	}
	if len(chunks) == 0 {
		return nil
	}

	next, err := q.Count(ctx, collection)
	if err != nil {
		return err
	}

	points := make([]point, len(chunks))
	for i, chunk := range chunks {
		points[i] = point{
			ID:     uuid.NewString(),
			Vector: chunk.Embedding,
			Payload: payload{
				ChunkID:          chunk.ID,
				Text:             chunk.Text,
				SourceDocumentID: chunk.SourceDocumentID,
				SequenceIndex:    chunk.SequenceIndex,
				Seq:              int64(next + i),
			},
		}
	}

	body := map[string]any{"points": points}
	return q.do(ctx, http.MethodPut, q.collectionPath(collection)+"/points?wait=true", body, nil)
}

// Count returns the exact number of points; 0 for a missing collection.
func (q *Index) Count(ctx context.Context, collection string) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := q.do(ctx, http.MethodPost, q.collectionPath(collection)+"/points/count", map[string]any{"exact": true}, &resp)
	if errors.Is(err, errCollectionMissing) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Search returns the k nearest points, re-ranked so equal scores keep insertion order.
func (q *Index) Search(ctx context.Context, collection string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	err := q.do(ctx, http.MethodPost, q.collectionPath(collection)+"/points/search", req, &resp)
	if errors.Is(err, errCollectionMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				ID:               r.Payload.ChunkID,
				Text:             r.Payload.Text,
				SourceDocumentID: r.Payload.SourceDocumentID,
				SequenceIndex:    r.Payload.SequenceIndex,
			},
			Score:    r.Score,
			Sequence: r.Payload.Seq,
		})
	}
	domain.RankRetrieved(results)
	return results, nil
}

// Drop deletes the collection.
func (q *Index) Drop(ctx context.Context, collection string) (bool, error) {
	exists, err := q.Exists(ctx, collection)
	if err != nil || !exists {
		return false, err
	}
	if err := q.do(ctx, http.MethodDelete, q.collectionPath(collection), nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases idle connections.
func (q *Index) Close() error {
	q.client.CloseIdleConnections()
	return nil
}

func (q *Index) collectionPath(collection string) string {
	return q.url + "/collections/" + url.PathEscape(collection)
}

func (q *Index) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building qdrant request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant %s %s: %w", domain.ErrStoreUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errCollectionMissing
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, endpoint, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding qdrant response: %w", err)
		}
	}
	return nil
}
