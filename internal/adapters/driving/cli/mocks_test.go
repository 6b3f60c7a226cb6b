package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// mockChatService records turns and returns canned replies.
type mockChatService struct {
	asked      []string
	handled    []string
	recorded   []*domain.UploadResult
	testEmails []string
	clears     int

	replyErr error
	emailErr error
	clearErr error
}

func (m *mockChatService) NewSession(_ context.Context) (*domain.SessionState, error) {
	return domain.NewSessionState("cli-test"), nil
}

func (m *mockChatService) Handle(_ context.Context, session *domain.SessionState, text string) (*driving.Reply, error) {
	m.handled = append(m.handled, text)
	reply := m.reply("Answer to: " + text)
	session.AppendTurn(text, reply.Text, reply.Insights)
	return reply, nil
}

func (m *mockChatService) Ask(_ context.Context, question string) (*driving.Reply, error) {
	m.asked = append(m.asked, question)
	return m.reply("Answer to: " + question), nil
}

func (m *mockChatService) RecordUpload(session *domain.SessionState, result *domain.UploadResult) {
	m.recorded = append(m.recorded, result)
	session.IncrementDocumentCount(len(result.Uploaded))
}

func (m *mockChatService) SendTestEmail(_ context.Context, to string) error {
	if m.emailErr != nil {
		return m.emailErr
	}
	m.testEmails = append(m.testEmails, to)
	return nil
}

func (m *mockChatService) ClearDocuments(_ context.Context, session *domain.SessionState) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clears++
	if session != nil {
		session.Reset()
	}
	return nil
}

func (m *mockChatService) reply(text string) *driving.Reply {
	if m.replyErr != nil {
		return &driving.Reply{Text: "Something went wrong.", Err: m.replyErr}
	}
	return &driving.Reply{
		Text: text,
		Insights: &domain.Insights{
			ConfidenceScore: 0.82,
			QueryComplexity: "Simple",
			ResponseTime:    1500 * time.Millisecond,
			MedicalKeywords: []string{"glucose"},
		},
		Sources: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{SourceDocumentID: "documents/labs.txt", SequenceIndex: 2, Text: "glucose 5.4"}, Score: 0.9},
		},
		Elapsed: 1500 * time.Millisecond,
	}
}

// mockIngestService keeps uploaded documents in memory.
type mockIngestService struct {
	docs     map[string][]byte
	uploads  [][]domain.UploadFile
	process  *domain.ProcessResult
	failWith error
}

func newMockIngestService() *mockIngestService {
	return &mockIngestService{
		docs: map[string][]byte{"documents/labs.txt": []byte("glucose 5.4 mmol/L")},
	}
}

func (m *mockIngestService) Upload(_ context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.uploads = append(m.uploads, files)
	result := &domain.UploadResult{}
	for _, f := range files {
		key := domain.DocumentKey(f.Filename)
		doc := domain.StoredDocument{Key: key, Filename: f.Filename, SizeBytes: int64(len(f.Content))}
		if _, ok := m.docs[key]; ok {
			result.AlreadyPresent = append(result.AlreadyPresent, doc)
			continue
		}
		m.docs[key] = f.Content
		result.Uploaded = append(result.Uploaded, doc)
		result.DocumentsIndexed++
		result.ChunksIndexed++
	}
	return result, nil
}

func (m *mockIngestService) ProcessStore(_ context.Context) (*domain.ProcessResult, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.process != nil {
		return m.process, nil
	}
	return &domain.ProcessResult{DocumentsProcessed: len(m.docs), ChunksIndexed: len(m.docs)}, nil
}

func (m *mockIngestService) ListDocuments(_ context.Context) ([]domain.StoredDocument, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	docs := make([]domain.StoredDocument, 0, len(m.docs))
	for key, data := range m.docs {
		docs = append(docs, domain.StoredDocument{
			Key:          key,
			Filename:     domain.FilenameFromKey(key),
			SizeBytes:    int64(len(data)),
			LastModified: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		})
	}
	return docs, nil
}

func (m *mockIngestService) FetchDocument(_ context.Context, key string) ([]byte, error) {
	data, ok := m.docs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// mockIndexService reports a populated collection.
type mockIndexService struct {
	cleared  int
	clearErr error
}

func (m *mockIndexService) Status(_ context.Context) (*driving.IndexStatus, error) {
	return &driving.IndexStatus{
		Collection:     "medical_docs",
		State:          domain.IndexPopulated,
		ChunkCount:     12,
		DocumentCount:  3,
		EmbeddingModel: "bge-small",
	}, nil
}

func (m *mockIndexService) Clear(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	return nil
}

// mockRetrievalService returns one chunk, or ErrEmptyIndex when empty is set.
type mockRetrievalService struct {
	empty bool
	lastK int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.lastK = k
	if m.empty {
		return nil, domain.ErrEmptyIndex
	}
	return []domain.RetrievedChunk{
		{Chunk: domain.Chunk{SourceDocumentID: "documents/labs.txt", Text: "fasting   glucose\n5.4 mmol/L"}, Score: 0.91},
	}, nil
}

func (m *mockRetrievalService) AssembleContext(chunks []domain.RetrievedChunk) string {
	return ""
}

// mockSessionService serves one archived snapshot.
type mockSessionService struct{}

func (m *mockSessionService) List(_ context.Context, limit int) ([]domain.SessionSnapshot, error) {
	return []domain.SessionSnapshot{
		{
			SessionID:     "s-1",
			Timestamp:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Email:         "patient@example.com",
			MessageCount:  4,
			DocumentCount: 2,
		},
	}[:min(limit, 1)], nil
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.SessionSnapshot, error) {
	if id != "s-1" {
		return nil, domain.ErrNotFound
	}
	return &domain.SessionSnapshot{
		SessionID:    "s-1",
		Email:        "patient@example.com",
		MessageCount: 2,
		IndexReady:   true,
		RecentMessages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "What is my glucose?"},
		},
	}, nil
}

// mockSettingsService stores values in a map.
type mockSettingsService struct {
	values        map[string]string
	embeddingErr  error
	completionErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: map[string]string{
		"completion.api_key": "sk-1234567890abcdef",
		"completion.model":   "llama3",
		"email.operator":     "ops@clinic.org",
		"email.password":     "",
	}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	settings.Email.OperatorAddress = m.values["email.operator"]
	return &settings, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if _, ok := m.values[key]; !ok {
		return domain.ErrInvalidConfiguration
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"completion.api_key", "completion.model", "email.operator", "email.password"}
}

func (m *mockSettingsService) Values() ([]driving.Setting, error) {
	var out []driving.Setting
	for _, key := range m.Keys() {
		out = append(out, driving.Setting{
			Key:    key,
			Value:  m.values[key],
			Secret: key == "completion.api_key" || key == "email.password",
		})
	}
	return out, nil
}

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embeddingErr }

func (m *mockSettingsService) ValidateCompletionConfig() error { return m.completionErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	chat      *mockChatService
	ingest    *mockIngestService
	index     *mockIndexService
	retrieval *mockRetrievalService
	settings  *mockSettingsService
}

var errTestBackend = errors.New("backend down")

// setupTestServices installs mock services and returns a cleanup function
// that removes them and resets command flags.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWithMocks()
	return cleanup
}

func setupTestServicesWithMocks() (*testServices, func()) {
	ts := &testServices{
		chat:      &mockChatService{},
		ingest:    newMockIngestService(),
		index:     &mockIndexService{},
		retrieval: &mockRetrievalService{},
		settings:  newMockSettingsService(),
	}
	SetServices(&Services{
		Chat:      ts.chat,
		Ingest:    ts.ingest,
		Index:     ts.index,
		Retrieval: ts.retrieval,
		Sessions:  &mockSessionService{},
		Settings:  ts.settings,
	})

	return ts, func() {
		SetServices(nil)
		resetFlags()
	}
}

func resetFlags() {
	documentOutput = ""
	processRebuild = false
	indexClearForce = false
	searchLimit = 5
	askQuiet = false
	chatMessages = nil
	chatEmail = ""
	sessionsLimit = 20
	watchScan = false
	configDir = ""
	verbose = false
}
