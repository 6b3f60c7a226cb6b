package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure SessionArchive implements the interface.
var _ driven.SessionArchive = (*SessionArchive)(nil)

// SessionArchive is an in-memory implementation of driven.SessionArchive.
type SessionArchive struct {
	mu        sync.RWMutex
	snapshots []domain.SessionSnapshot
}

// NewSessionArchive creates an empty in-memory session archive.
func NewSessionArchive() *SessionArchive {
	return &SessionArchive{}
}

// Save appends a snapshot.
func (a *SessionArchive) Save(_ context.Context, snapshot domain.SessionSnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots = append(a.snapshots, snapshot)
	return nil
}

// List returns snapshots newest first.
func (a *SessionArchive) List(_ context.Context, limit int) ([]domain.SessionSnapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]domain.SessionSnapshot, len(a.snapshots))
	copy(out, a.snapshots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns the latest snapshot for a session.
func (a *SessionArchive) Get(_ context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var latest *domain.SessionSnapshot
	for i := range a.snapshots {
		s := a.snapshots[i]
		if s.SessionID != sessionID {
			continue
		}
		if latest == nil || !s.Timestamp.Before(latest.Timestamp) {
			latest = &s
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return latest, nil
}
