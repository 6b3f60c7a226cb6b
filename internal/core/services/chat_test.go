package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/postprocessors"
	"github.com/custodia-labs/medichat/internal/postprocessors/chunker"
)

const testOperator = "ops@clinic.org"

type chatFixture struct {
	chat       *ChatService
	ingest     *Ingestor
	store      *memory.ObjectStore
	index      *memory.VectorIndex
	embedder   *mockEmbedder
	completion *mockCompletion
	notifier   *mockNotifier
	archive    *memory.SessionArchive
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	f := &chatFixture{
		store:      memory.NewObjectStore(),
		index:      memory.NewVectorIndex(),
		embedder:   newMockEmbedder(),
		completion: &mockCompletion{answer: "The hemoglobin level is normal."},
		notifier:   &mockNotifier{recipient: testOperator},
		archive:    memory.NewSessionArchive(),
	}

	proc, err := chunker.New(chunker.WithChunkSize(200), chunker.WithOverlap(20))
	require.NoError(t, err)

	gateway := NewContentGateway(f.store)
	manager := NewIndexManager(f.index, f.embedder, "test")
	f.ingest = NewIngestor(gateway, &mockNormaliser{}, postprocessors.NewPipeline(proc), manager)
	f.chat = NewChatService(
		NewRouter(),
		NewRetriever(f.index, f.embedder, "test"),
		manager,
		f.ingest,
		f.completion,
		f.notifier,
		f.archive,
		NewReporter(&mockPromptStore{}),
		3,
	)
	return f
}

func (f *chatFixture) upload(t *testing.T, session *domain.SessionState, files ...domain.UploadFile) {
	t.Helper()
	result, err := f.ingest.Upload(context.Background(), files)
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	f.chat.RecordUpload(session, result)
}

func labFile() domain.UploadFile {
	return domain.UploadFile{
		Filename: "labs.txt",
		Content:  []byte("Hemoglobin 14.2 g/dL within normal range. Glucose fasting 92 mg/dL."),
	}
}

func TestChatService_Handle_NilSession(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.chat.Handle(context.Background(), nil, "hello")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatService_PlainQuery_NotReady(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.chat.NewSession(context.Background())
	require.NoError(t, err)

	reply, err := f.chat.Handle(context.Background(), session, "What does this lab report show?")
	require.NoError(t, err)

	assert.Equal(t, "Please upload and process documents first!", reply.Text)
	assert.ErrorIs(t, reply.Err, domain.ErrEmptyIndex)
	assert.Equal(t, domain.CommandPlainQuery, reply.Intent.Kind)
	assert.Equal(t, 2, session.MessageCount())
	assert.Empty(t, f.completion.messages)
}

func TestChatService_PlainQuery_Answers(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	session, err := f.chat.NewSession(ctx)
	require.NoError(t, err)
	f.upload(t, session, labFile())

	require.True(t, session.IsIndexReady())
	require.Equal(t, 1, session.DocumentCount())

	reply, err := f.chat.Handle(ctx, session, "What is the hemoglobin level?")
	require.NoError(t, err)
	require.NoError(t, reply.Err)

	assert.Equal(t, "The hemoglobin level is normal.", reply.Text)
	assert.NotEmpty(t, reply.Sources)

	prompt := f.completion.lastPrompt()
	assert.Contains(t, prompt, "You are MediChat Pro")
	assert.Contains(t, prompt, "Medical Documents Context (Total Documents: 1):")
	assert.Contains(t, prompt, "Hemoglobin 14.2 g/dL")
	assert.Contains(t, prompt, "User Question: What is the hemoglobin level?")

	require.NotNil(t, reply.Insights)
	assert.Equal(t, 1, reply.Insights.TotalDocuments)
	assert.Equal(t, 1, reply.Insights.RelevantChunks)
	assert.Equal(t, 2, reply.Insights.MessageCount)
	assert.Equal(t, "Simple", reply.Insights.QueryComplexity)
	assert.Contains(t, reply.Insights.MedicalKeywords, "hemoglobin")

	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.NotNil(t, messages[1].Insights)
}

func TestChatService_PlainQuery_CompletionFailure(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	session, _ := f.chat.NewSession(ctx)
	f.upload(t, session, labFile())

	f.completion.err = errors.New("model overloaded")
	reply, err := f.chat.Handle(ctx, session, "What is the glucose level?")
	require.NoError(t, err)

	assert.ErrorIs(t, reply.Err, domain.ErrCompletionService)
	assert.Contains(t, reply.Text, "model overloaded")
	assert.Equal(t, 2, session.MessageCount())
}

func TestChatService_SendReport(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	session, _ := f.chat.NewSession(ctx)

	reply, err := f.chat.Handle(ctx, session, "send report to a@b.com")
	require.NoError(t, err)

	assert.Equal(t, "Analysis report sent to a@b.com!", reply.Text)
	assert.NoError(t, reply.Err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "report", f.notifier.sent[0].kind)
	assert.Equal(t, "a@b.com", f.notifier.sent[0].to)
	assert.True(t, strings.HasPrefix(f.notifier.sent[0].subject, "MediChat Pro Analysis Report - "))
	assert.Contains(t, f.notifier.sent[0].body, "Report sent via chat command")
	assert.Equal(t, 2, session.MessageCount())
}

func TestChatService_SendReport_CarriesLastAnswer(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	session, _ := f.chat.NewSession(ctx)
	f.upload(t, session, labFile())

	answered, err := f.chat.Handle(ctx, session, "What is the hemoglobin level?")
	require.NoError(t, err)
	require.NotNil(t, answered.Insights)

	// Command turns in between are not reported on.
	require.NoError(t, session.SetReceiverEmail("patient@home.org"))
	_, err = f.chat.Handle(ctx, session, "save session")
	require.NoError(t, err)
	f.notifier.sent = nil

	reply, err := f.chat.Handle(ctx, session, "send report to a@b.com")
	require.NoError(t, err)
	require.NoError(t, reply.Err)
	require.Len(t, f.notifier.sent, 1)

	body := f.notifier.sent[0].body
	assert.Contains(t, body, "Query:\nWhat is the hemoglobin level?")
	assert.Contains(t, body, "Response:\nThe hemoglobin level is normal.")
	assert.Contains(t, body, "Confidence:       "+answered.Insights.ConfidenceLabel())
	assert.Contains(t, body, "Relevant chunks:  1")
	assert.Contains(t, body, "Query complexity: Simple")
	assert.Contains(t, body, "Medical keywords: ")
	assert.Contains(t, body, "hemoglobin")
	assert.Contains(t, body, "Messages:         4")
	assert.Contains(t, body, "Report sent via chat command")
}

func TestChatService_SendReport_InvalidAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "send report to notanemail", want: msgMissingEmail},
		{input: "send report to x@a..bc", want: "Invalid email address: x@a..bc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := newChatFixture(t)
			session, _ := f.chat.NewSession(context.Background())

			reply, err := f.chat.Handle(context.Background(), session, tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.want, reply.Text)
			assert.ErrorIs(t, reply.Err, domain.ErrInvalidEmailAddress)
			assert.Equal(t, domain.CommandSendReport, reply.Intent.Kind)
			assert.Empty(t, f.notifier.sent)
			assert.Equal(t, 2, session.MessageCount())
		})
	}
}

func TestChatService_SendReport_NotifierFailure(t *testing.T) {
	f := newChatFixture(t)
	f.notifier.err = errors.New("smtp refused")
	session, _ := f.chat.NewSession(context.Background())

	reply, err := f.chat.Handle(context.Background(), session, "send report to a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Failed to send report to a@b.com", reply.Text)
	assert.Error(t, reply.Err)
}

func TestChatService_SupportTicket(t *testing.T) {
	f := newChatFixture(t)
	session, _ := f.chat.NewSession(context.Background())
	require.NoError(t, session.SetReceiverEmail("patient@home.org"))

	reply, err := f.chat.Handle(context.Background(), session, "create support ticket")
	require.NoError(t, err)

	assert.Equal(t, "Support ticket created and sent to ops@clinic.org!", reply.Text)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "ticket", f.notifier.sent[0].kind)
	assert.Equal(t, "patient@home.org", f.notifier.sent[0].to)
	assert.Contains(t, f.notifier.sent[0].subject, "Support Ticket TICKET-")
	assert.Contains(t, f.notifier.sent[0].body, "create support ticket")
}

func TestChatService_SupportTicket_NoNotifier(t *testing.T) {
	f := newChatFixture(t)
	f.chat.notifier = nil
	session, _ := f.chat.NewSession(context.Background())

	reply, err := f.chat.Handle(context.Background(), session, "open ticket")
	require.NoError(t, err)
	assert.Equal(t, "Failed to create support ticket", reply.Text)
	assert.ErrorIs(t, reply.Err, domain.ErrNotifierUnavailable)
}

func TestChatService_ProcessStore(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	gateway := NewContentGateway(f.store)
	_, _, err := gateway.Upload(ctx, "labs.txt", labFile().Content)
	require.NoError(t, err)
	_, _, err = gateway.Upload(ctx, "scan.bin", []byte{0x00, 0x01})
	require.NoError(t, err)

	session, _ := f.chat.NewSession(ctx)
	require.False(t, session.IsIndexReady())

	reply, err := f.chat.Handle(ctx, session, "process s3 documents")
	require.NoError(t, err)

	assert.Equal(t,
		"Successfully processed 1 S3 documents with 1 chunks! All S3 documents are now available for chat.",
		reply.Text)
	require.Error(t, reply.Err)
	assert.Contains(t, reply.Err.Error(), "scan.bin")
	assert.True(t, session.IsIndexReady())
	assert.Equal(t, 1, session.DocumentCount())
}

func TestChatService_ProcessStore_Nothing(t *testing.T) {
	f := newChatFixture(t)
	session, _ := f.chat.NewSession(context.Background())

	reply, err := f.chat.Handle(context.Background(), session, "process all s3")
	require.NoError(t, err)
	assert.Equal(t, "No documents could be processed from S3", reply.Text)
	assert.False(t, session.IsIndexReady())
}

func TestChatService_SaveSession(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	session, _ := f.chat.NewSession(ctx)
	require.NoError(t, session.SetReceiverEmail("patient@home.org"))

	reply, err := f.chat.Handle(ctx, session, "save session")
	require.NoError(t, err)

	assert.Equal(t, "Session saved and summary sent to email!", reply.Text)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "patient@home.org", f.notifier.sent[0].to)
	assert.Contains(t, f.notifier.sent[0].body, "Session saved with 0 documents and 0 messages.")

	saved, err := f.archive.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "patient@home.org", saved.Email)
	assert.Equal(t, 2, session.MessageCount())
}

func TestChatService_SaveSession_NeedsReceiver(t *testing.T) {
	f := newChatFixture(t)
	session, _ := f.chat.NewSession(context.Background())

	reply, err := f.chat.Handle(context.Background(), session, "save the session")
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid email address to save session", reply.Text)
	assert.Empty(t, f.notifier.sent)
}

func TestChatService_ClearDocuments(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	session, _ := f.chat.NewSession(ctx)
	f.upload(t, session, labFile())
	_, err := f.chat.Handle(ctx, session, "What is the hemoglobin level?")
	require.NoError(t, err)

	require.NoError(t, f.chat.ClearDocuments(ctx, session))

	count, err := f.index.Count(ctx, "test")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.False(t, session.IsIndexReady())
	assert.Zero(t, session.DocumentCount())
	assert.Equal(t, 2, session.MessageCount(), "conversation is kept")

	reply, err := f.chat.Handle(ctx, session, "What is the glucose level?")
	require.NoError(t, err)
	assert.Equal(t, msgNotReady, reply.Text)

	docs, err := f.ingest.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "stored documents survive a clear")
}

func TestChatService_ClearDocuments_NilSession(t *testing.T) {
	f := newChatFixture(t)
	assert.NoError(t, f.chat.ClearDocuments(context.Background(), nil))
}

func TestChatService_NewSession_ExistingIndex(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, _ := f.chat.NewSession(ctx)
	f.upload(t, first, labFile(), domain.UploadFile{Filename: "notes.txt", Content: []byte("Blood pressure 120/80.")})

	second, err := f.chat.NewSession(ctx)
	require.NoError(t, err)
	assert.True(t, second.IsIndexReady())
	assert.Equal(t, 2, second.DocumentCount())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestChatService_Ask(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	reply, err := f.chat.Ask(ctx, "anything")
	require.NoError(t, err)
	assert.ErrorIs(t, reply.Err, domain.ErrEmptyIndex)

	session, _ := f.chat.NewSession(ctx)
	f.upload(t, session, labFile())

	reply, err = f.chat.Ask(ctx, "glucose")
	require.NoError(t, err)
	assert.Equal(t, "The hemoglobin level is normal.", reply.Text)
	assert.Equal(t, domain.CommandPlainQuery, reply.Intent.Kind)
}

func TestChatService_SendTestEmail(t *testing.T) {
	f := newChatFixture(t)

	require.NoError(t, f.chat.SendTestEmail(context.Background(), "user@example.com"))
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].body, "Test email configuration")

	err := f.chat.SendTestEmail(context.Background(), "user@com")
	assert.ErrorIs(t, err, domain.ErrInvalidEmailAddress)
}
