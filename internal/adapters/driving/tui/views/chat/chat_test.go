package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply      *driving.Reply
	sessionErr error
	clearErr   error
	handled    []string
	clears     int
}

func (m *mockChatService) NewSession(_ context.Context) (*domain.SessionState, error) {
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	session := domain.NewSessionState("tui")
	session.SetDocumentCount(2)
	session.SetIndexReady(true)
	return session, nil
}

func (m *mockChatService) Handle(_ context.Context, session *domain.SessionState, text string) (*driving.Reply, error) {
	m.handled = append(m.handled, text)
	session.AppendTurn(text, m.reply.Text, m.reply.Insights)
	return m.reply, nil
}

func (m *mockChatService) Ask(_ context.Context, _ string) (*driving.Reply, error) {
	return m.reply, nil
}

func (m *mockChatService) RecordUpload(_ *domain.SessionState, _ *domain.UploadResult) {}

func (m *mockChatService) SendTestEmail(_ context.Context, _ string) error {
	return nil
}

func (m *mockChatService) ClearDocuments(_ context.Context, session *domain.SessionState) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clears++
	session.Reset()
	return nil
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func startedView(t *testing.T, svc *mockChatService) *View {
	t.Helper()
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 30)

	msg := v.startSession()()
	v.Update(msg)
	require.NotNil(t, v.Session())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.Nil(t, v.Session())
	assert.False(t, v.Pending())
	assert.Contains(t, v.View(), "Initialising")
}

func TestView_Init_StartsSession(t *testing.T) {
	v := NewView(nil, nil, &mockChatService{})

	assert.NotNil(t, v.Init())

	msg := v.startSession()()
	started, ok := msg.(messages.SessionStarted)
	require.True(t, ok)
	require.NoError(t, started.Err)
	assert.Equal(t, "tui", started.Session.ID)
}

func TestView_Init_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)

	msg := v.startSession()()
	v.Update(msg)

	assert.ErrorIs(t, v.Err(), ErrNoChatService)
	assert.Nil(t, v.Session())
}

func TestView_SessionStarted_ShowsWelcome(t *testing.T) {
	v := startedView(t, &mockChatService{})

	assert.Equal(t, 1, v.TranscriptLen())
	view := v.View()
	assert.Contains(t, view, "Ask a question")
	assert.Contains(t, view, "2 documents")
	assert.Contains(t, view, "index ready")
}

func TestView_SessionStarted_Error(t *testing.T) {
	v := NewView(nil, nil, &mockChatService{sessionErr: errors.New("index offline")})
	v.SetDimensions(100, 30)

	v.Update(v.startSession()())

	require.Error(t, v.Err())
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.Contains(t, v.View(), "index offline")
}

func TestView_SendAndReply(t *testing.T) {
	svc := &mockChatService{reply: &driving.Reply{
		Text: "Your HbA1c was 6.1%.",
		Insights: &domain.Insights{
			ConfidenceScore: 0.82,
			MedicalKeywords: []string{"hba1c"},
		},
		Sources: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{SourceDocumentID: "labs.pdf"}},
			{Chunk: domain.Chunk{SourceDocumentID: "labs.pdf"}},
		},
		Elapsed: 1500 * time.Millisecond,
	}}
	v := startedView(t, svc)

	typeText(v, "what was my hba1c?")
	assert.Equal(t, "what was my hba1c?", v.Input())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())
	assert.Empty(t, v.Input())
	assert.Equal(t, status.StateThinking, v.statusbar.State())
	assert.Contains(t, v.View(), "Thinking...")

	msg := cmd()
	replied, ok := msg.(messages.ChatReplied)
	require.True(t, ok)
	v.Update(replied)

	assert.False(t, v.Pending())
	assert.Equal(t, []string{"what was my hba1c?"}, svc.handled)
	assert.Equal(t, 3, v.TranscriptLen())

	view := v.View()
	assert.Contains(t, view, "Your HbA1c was 6.1%.")
	assert.Contains(t, view, "confidence 82.0%")
	assert.Contains(t, view, "sources: labs.pdf")
	assert.Contains(t, view, "2 messages")
}

func TestView_Send_IgnoredWhileEmptyOrPending(t *testing.T) {
	svc := &mockChatService{reply: &driving.Reply{Text: "ok"}}
	v := startedView(t, svc)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty input is not sent")

	typeText(v, "first")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	typeText(v, "second")
	_, again := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again, "a second turn waits for the first reply")
}

func TestView_ReplyWithError(t *testing.T) {
	svc := &mockChatService{reply: &driving.Reply{
		Text: "No documents have been processed yet.",
		Err:  domain.ErrEmptyIndex,
	}}
	v := startedView(t, svc)

	typeText(v, "hello")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrEmptyIndex)
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.Contains(t, v.View(), "No documents have been processed yet.")
}

func TestView_HandleFailure(t *testing.T) {
	v := startedView(t, &mockChatService{})
	v.pending = true

	v.Update(messages.ChatReplied{Text: "x", Err: errors.New("session is nil")})

	assert.False(t, v.Pending())
	assert.EqualError(t, v.Err(), "session is nil")
}

func TestView_EmailSetsReceiver(t *testing.T) {
	svc := &mockChatService{reply: &driving.Reply{Text: "Session saved and summary sent to email!"}}
	v := startedView(t, svc)

	typeText(v, "/email nope")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, v.Session().HasValidReceiver())
	assert.Contains(t, v.View(), "Invalid address")

	typeText(v, "/email patient@example.com")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, v.Pending())
	assert.Equal(t, "patient@example.com", v.Session().ReceiverEmail())
	assert.Contains(t, v.View(), "Session summaries will be sent to patient@example.com")
	assert.Empty(t, svc.handled, "/email is not a chat turn")

	typeText(v, "save session")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())
	assert.Equal(t, []string{"save session"}, svc.handled)
	assert.True(t, v.Session().HasValidReceiver())
}

func TestView_Clear(t *testing.T) {
	svc := &mockChatService{}
	v := startedView(t, svc)
	require.True(t, v.Session().IsIndexReady())

	typeText(v, "/clear")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())

	v.Update(cmd())

	assert.False(t, v.Pending())
	assert.Equal(t, 1, svc.clears)
	assert.False(t, v.Session().IsIndexReady())
	assert.Zero(t, v.Session().DocumentCount())
	view := v.View()
	assert.Contains(t, view, "Index cleared.")
	assert.Contains(t, view, "0 documents")
	assert.Empty(t, svc.handled)
}

func TestView_ClearFails(t *testing.T) {
	v := startedView(t, &mockChatService{clearErr: errors.New("index offline")})

	typeText(v, "/clear")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	require.Error(t, v.Err())
	assert.Contains(t, v.Err().Error(), "clear failed")
	assert.True(t, v.Session().IsIndexReady())
}

func TestWelcomeText_ListsRoutedCommands(t *testing.T) {
	for _, c := range domain.ChatCommands {
		assert.Contains(t, welcomeText, c.Example)
	}
}

func TestView_Escape(t *testing.T) {
	v := NewView(nil, nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestReplyFooter(t *testing.T) {
	assert.Empty(t, replyFooter(&driving.Reply{Text: "Session saved."}))

	footer := replyFooter(&driving.Reply{
		Insights: &domain.Insights{ConfidenceScore: 0.5},
		Sources: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{SourceDocumentID: "a.pdf"}},
			{Chunk: domain.Chunk{SourceDocumentID: "b.pdf"}},
		},
	})
	assert.Equal(t, "confidence 50.0% | sources: a.pdf, b.pdf", footer)
}
