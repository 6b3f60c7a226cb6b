package domain

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks messages typed by the user.
	RoleUser Role = "user"

	// RoleAssistant marks replies produced by the system.
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the conversation.
type ChatMessage struct {
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Insights  *Insights `json:"insights,omitempty" yaml:"insights,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SessionState holds the running conversation, the ingestion counters and
// the index readiness flag for one chat session.
//
// It is passed explicitly to every handler. Messages are append-only;
// only Reset removes them.
type SessionState struct {
	// ID identifies the session in archived snapshots.
	ID string

	messages      []ChatMessage
	documentCount int
	indexReady    bool
	receiverEmail string
}

// NewSessionState creates an empty session.
func NewSessionState(id string) *SessionState {
	return &SessionState{ID: id}
}

// AppendMessage appends a message to the conversation.
func (s *SessionState) AppendMessage(role Role, content string) {
	s.messages = append(s.messages, ChatMessage{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// AppendTurn appends a user message and its assistant reply together,
// so a turn is never recorded half-way.
func (s *SessionState) AppendTurn(user, assistant string, insights *Insights) {
	now := time.Now()
	s.messages = append(s.messages,
		ChatMessage{Role: RoleUser, Content: user, CreatedAt: now},
		ChatMessage{Role: RoleAssistant, Content: assistant, Insights: insights, CreatedAt: now},
	)
}

// Messages returns a copy of the whole conversation.
func (s *SessionState) Messages() []ChatMessage {
	return s.RecentMessages(len(s.messages))
}

// RecentMessages returns the last n messages in order, or fewer if the
// history is shorter.
func (s *SessionState) RecentMessages(n int) []ChatMessage {
	if n <= 0 {
		return []ChatMessage{}
	}
	start := len(s.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]ChatMessage, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out
}

// MessageCount returns the number of messages in the conversation.
func (s *SessionState) MessageCount() int {
	return len(s.messages)
}

// DocumentCount returns the number of documents ingested in this session.
func (s *SessionState) DocumentCount() int {
	return s.documentCount
}

// IncrementDocumentCount adds n to the document counter. Negative values are ignored.
func (s *SessionState) IncrementDocumentCount(n int) {
	if n > 0 {
		s.documentCount += n
	}
}

// SetDocumentCount replaces the document counter, used after a full store reprocess.
func (s *SessionState) SetDocumentCount(n int) {
	s.documentCount = max(n, 0)
}

// SetIndexReady records whether the index can answer questions.
func (s *SessionState) SetIndexReady(ready bool) {
	s.indexReady = ready
}

// IsIndexReady reports whether questions can be answered from the index.
func (s *SessionState) IsIndexReady() bool {
	return s.indexReady
}

// ReceiverEmail returns the configured report address, possibly empty.
func (s *SessionState) ReceiverEmail() string {
	return s.receiverEmail
}

// SetReceiverEmail sets the report address after validating it.
// An empty address clears the receiver.
func (s *SessionState) SetReceiverEmail(addr string) error {
	if addr != "" {
		if err := ValidateEmail(addr); err != nil {
			return err
		}
	}
	s.receiverEmail = addr
	return nil
}

// HasValidReceiver reports whether a valid report address is configured.
func (s *SessionState) HasValidReceiver() bool {
	return s.receiverEmail != "" && IsValidEmail(s.receiverEmail)
}

// Reset clears the index-derived state after a collection clear.
// The conversation and receiver address are kept.
func (s *SessionState) Reset() {
	s.documentCount = 0
	s.indexReady = false
}

// Snapshot captures the session for notification payloads and archiving.
func (s *SessionState) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		SessionID:      s.ID,
		Timestamp:      time.Now(),
		Email:          s.receiverEmail,
		DocumentCount:  s.documentCount,
		MessageCount:   len(s.messages),
		IndexReady:     s.indexReady,
		RecentMessages: s.RecentMessages(SnapshotMessageLimit),
	}
}

// SnapshotMessageLimit is the number of recent messages kept in a snapshot.
const SnapshotMessageLimit = 5

// SessionSnapshot is an immutable summary of a session at a point in time.
type SessionSnapshot struct {
	SessionID      string        `json:"session_id" yaml:"session_id"`
	Timestamp      time.Time     `json:"timestamp" yaml:"timestamp"`
	Email          string        `json:"email" yaml:"email"`
	DocumentCount  int           `json:"document_count" yaml:"document_count"`
	MessageCount   int           `json:"message_count" yaml:"message_count"`
	IndexReady     bool          `json:"index_ready" yaml:"index_ready"`
	RecentMessages []ChatMessage `json:"recent_messages" yaml:"recent_messages"`
}
