package driving

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// IngestService moves documents into the content store and the index.
type IngestService interface {
	// Upload stores each file (skipping ones already present), extracts
	// its text, chunks it and indexes the chunks. One file failing does not
	// stop the others.
	Upload(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error)

	// ProcessStore re-runs extraction, chunking and indexing over every
	// stored document. Per-document failures are reported and skipped.
	ProcessStore(ctx context.Context) (*domain.ProcessResult, error)

	// ListDocuments returns every stored document.
	ListDocuments(ctx context.Context) ([]domain.StoredDocument, error)

	// FetchDocument returns the bytes of a stored document.
	FetchDocument(ctx context.Context, key string) ([]byte, error)
}
