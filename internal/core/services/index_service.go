package services

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService reports on and clears the vector index.
type IndexService struct {
	manager *IndexManager
	gateway *ContentGateway
}

// NewIndexService creates an index service.
func NewIndexService(manager *IndexManager, gateway *ContentGateway) *IndexService {
	return &IndexService{manager: manager, gateway: gateway}
}

// Status returns the collection state and the number of stored documents.
func (s *IndexService) Status(ctx context.Context) (*driving.IndexStatus, error) {
	state, err := s.manager.State(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.manager.Count(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.gateway.List(ctx)
	if err != nil {
		return nil, err
	}

	return &driving.IndexStatus{
		Collection:     s.manager.Collection(),
		State:          state,
		ChunkCount:     count,
		DocumentCount:  len(docs),
		EmbeddingModel: s.manager.EmbeddingModel(),
	}, nil
}

// Clear drops the collection. Stored documents are kept.
func (s *IndexService) Clear(ctx context.Context) error {
	_, err := s.manager.Clear(ctx)
	return err
}
