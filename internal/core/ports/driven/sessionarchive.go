package driven

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// SessionArchive persists session snapshots for later inspection.
// Snapshots are archival only and are never loaded back into a live session.
type SessionArchive interface {
	// Save stores a snapshot. A session may be saved many times.
	Save(ctx context.Context, snapshot domain.SessionSnapshot) error

	// List returns the most recent snapshots, newest first.
	// limit <= 0 returns all snapshots.
	List(ctx context.Context, limit int) ([]domain.SessionSnapshot, error)

	// Get returns the latest snapshot for a session.
	// Returns domain.ErrNotFound if the session was never saved.
	Get(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error)
}
