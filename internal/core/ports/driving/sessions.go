package driving

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// SessionService reads archived session snapshots.
type SessionService interface {
	// List returns the most recent snapshots, newest first.
	List(ctx context.Context, limit int) ([]domain.SessionSnapshot, error)

	// Get returns the latest snapshot for a session.
	Get(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error)
}
