package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
	"github.com/custodia-labs/medichat/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// errNoText marks documents whose extraction produced no chunks.
var errNoText = errors.New("no text could be extracted")

// Ingestor runs documents through store, extraction, chunking and indexing.
type Ingestor struct {
	gateway     *ContentGateway
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	manager     *IndexManager
}

// NewIngestor creates an ingestion service.
func NewIngestor(
	gateway *ContentGateway,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	manager *IndexManager,
) *Ingestor {
	return &Ingestor{
		gateway:     gateway,
		normalisers: normalisers,
		pipeline:    pipeline,
		manager:     manager,
	}
}

// Upload stores and indexes each file. Files already in the store are
// reported as already present and indexed again.
func (i *Ingestor) Upload(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	logger.Section("Upload")
	defer logger.Elapsed("upload", time.Now())

	result := &domain.UploadResult{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		stored, created, err := i.gateway.Upload(ctx, f.Filename, f.Content)
		if err != nil {
			logger.Warn("upload %s: %v", f.Filename, err)
			result.Failed = append(result.Failed, domain.UploadFailure{Filename: f.Filename, Error: err.Error()})
			continue
		}
		if created {
			result.Uploaded = append(result.Uploaded, *stored)
		} else {
			result.AlreadyPresent = append(result.AlreadyPresent, *stored)
		}

		n, err := i.index(ctx, stored.Key, stored.Filename, f.Content)
		if err != nil {
			logger.Warn("index %s: %v", f.Filename, err)
			result.Failed = append(result.Failed, domain.UploadFailure{Filename: f.Filename, Error: err.Error()})
			continue
		}
		result.DocumentsIndexed++
		result.ChunksIndexed += n
	}

	logger.Info("uploaded %d, already present %d, failed %d, indexed %d chunks",
		len(result.Uploaded), len(result.AlreadyPresent), len(result.Failed), result.ChunksIndexed)
	return result, nil
}

// ProcessStore indexes every stored document. Chunks already in the index
// are not removed first, so running it twice duplicates them.
func (i *Ingestor) ProcessStore(ctx context.Context) (*domain.ProcessResult, error) {
	logger.Section("Process store")
	defer logger.Elapsed("process store", time.Now())

	docs, err := i.gateway.List(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("found %d stored documents", len(docs))

	result := &domain.ProcessResult{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		n, err := i.processStored(ctx, doc)
		if err != nil {
			logger.Warn("process %s: %v", doc.Key, err)
			result.Failed = append(result.Failed, domain.UploadFailure{Filename: doc.Filename, Error: err.Error()})
			continue
		}
		result.DocumentsProcessed++
		result.ChunksIndexed += n
	}

	logger.Info("processed %d documents into %d chunks, %d failed",
		result.DocumentsProcessed, result.ChunksIndexed, len(result.Failed))
	return result, nil
}

// ListDocuments returns every stored document.
func (i *Ingestor) ListDocuments(ctx context.Context) ([]domain.StoredDocument, error) {
	return i.gateway.List(ctx)
}

// FetchDocument returns the bytes of a stored document.
func (i *Ingestor) FetchDocument(ctx context.Context, key string) ([]byte, error) {
	return i.gateway.Fetch(ctx, key)
}

func (i *Ingestor) processStored(ctx context.Context, doc domain.StoredDocument) (int, error) {
	data, err := i.gateway.Fetch(ctx, doc.Key)
	if err != nil {
		return 0, err
	}
	return i.index(ctx, doc.Key, doc.Filename, data)
}

// index extracts, chunks and inserts one document.
func (i *Ingestor) index(ctx context.Context, key, filename string, data []byte) (int, error) {
	raw := &domain.RawDocument{
		Key:      key,
		Filename: filename,
		Content:  data,
	}

	normalised, err := i.normalisers.Normalise(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}

	chunks, err := i.pipeline.Process(ctx, &normalised.Document)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return 0, errNoText
	}

	n, err := i.manager.InsertBatch(ctx, chunks)
	if err != nil {
		return 0, err
	}
	logger.Debug("%s: indexed %d chunks", key, n)
	return n, nil
}
