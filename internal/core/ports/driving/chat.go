package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// ChatService handles chat turns: commands and questions.
type ChatService interface {
	// NewSession creates a session, marking the index ready when the
	// collection already holds chunks.
	NewSession(ctx context.Context) (*domain.SessionState, error)

	// Handle classifies the text, dispatches the command or question and
	// records exactly one user and one assistant message on the session.
	// Failures that have a user-facing reply are returned in Reply.Err with
	// a nil error; the error return is reserved for a nil session.
	Handle(ctx context.Context, session *domain.SessionState, text string) (*Reply, error)

	// Ask answers a question without command routing or session history.
	Ask(ctx context.Context, question string) (*Reply, error)

	// RecordUpload updates the session counters after files were ingested
	// outside the chat stream.
	RecordUpload(session *domain.SessionState, result *domain.UploadResult)

	// SendTestEmail sends a fixed report to verify notification settings.
	SendTestEmail(ctx context.Context, to string) error

	// ClearDocuments empties the index and resets the session counters.
	// session may be nil.
	ClearDocuments(ctx context.Context, session *domain.SessionState) error
}

// Reply is the outcome of one chat turn.
type Reply struct {
	// Text is the assistant message shown to the user.
	Text string

	// Intent is the classified command.
	Intent domain.CommandIntent

	// Insights is set for answered questions.
	Insights *domain.Insights

	// Sources are the chunks the answer was based on.
	Sources []domain.RetrievedChunk

	// Err is the underlying failure, if any. Text already describes it.
	Err error

	// Elapsed is the wall time spent producing the reply.
	Elapsed time.Duration
}
