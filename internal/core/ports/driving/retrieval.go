package driving

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// RetrievalService finds chunks relevant to a query.
type RetrievalService interface {
	// Retrieve returns up to k chunks ordered by descending score.
	// An absent or empty collection yields no chunks and no error.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)

	// AssembleContext joins chunk texts with a blank line, in order.
	AssembleContext(chunks []domain.RetrievedChunk) string
}
