package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// defaultSessionLimit applies when List is called without a limit.
const defaultSessionLimit = 20

// SessionService reads archived session snapshots.
type SessionService struct {
	archive driven.SessionArchive
}

// NewSessionService creates a session service. archive may be nil.
func NewSessionService(archive driven.SessionArchive) *SessionService {
	return &SessionService{archive: archive}
}

// List returns the newest snapshots first.
func (s *SessionService) List(ctx context.Context, limit int) ([]domain.SessionSnapshot, error) {
	if s.archive == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	snapshots, err := s.archive.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return snapshots, nil
}

// Get returns the latest snapshot of a session.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	snapshot, err := s.archive.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return snapshot, nil
}
