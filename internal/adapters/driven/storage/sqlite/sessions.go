package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// sessionArchive implements driven.SessionArchive.
type sessionArchive struct {
	store *Store
}

var _ driven.SessionArchive = (*sessionArchive)(nil)

const snapshotColumns = `session_id, timestamp, email, document_count, message_count, index_ready, recent_messages`

// Save appends a snapshot.
func (a *sessionArchive) Save(ctx context.Context, snapshot domain.SessionSnapshot) error {
	messages := snapshot.RecentMessages
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshalling messages: %w", err)
	}

	_, err = a.store.db.ExecContext(ctx, `
		INSERT INTO session_snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snapshot.SessionID, snapshot.Timestamp.UTC(), snapshot.Email, snapshot.DocumentCount,
		snapshot.MessageCount, snapshot.IndexReady, string(messagesJSON))
	if err != nil {
		return fmt.Errorf("saving session snapshot: %w", err)
	}
	return nil
}

// List returns snapshots newest first.
func (a *sessionArchive) List(ctx context.Context, limit int) ([]domain.SessionSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM session_snapshots ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing session snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.SessionSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session snapshots: %w", err)
	}
	return snapshots, nil
}

// Get returns the latest snapshot for a session.
func (a *sessionArchive) Get(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	row := a.store.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+` FROM session_snapshots
		WHERE session_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`, sessionID)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return snapshot, err
}

func scanSnapshot(row scanner) (*domain.SessionSnapshot, error) {
	var s domain.SessionSnapshot
	var messagesJSON string
	if err := row.Scan(&s.SessionID, &s.Timestamp, &s.Email, &s.DocumentCount,
		&s.MessageCount, &s.IndexReady, &messagesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &s.RecentMessages); err != nil {
		return nil, fmt.Errorf("unmarshalling messages: %w", err)
	}
	return &s, nil
}
