package mcp

import (
	"context"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply    *driving.Reply
	err      error
	question string
}

func (m *mockChatService) NewSession(_ context.Context) (*domain.SessionState, error) {
	return domain.NewSessionState("test"), m.err
}

func (m *mockChatService) Handle(_ context.Context, _ *domain.SessionState, _ string) (*driving.Reply, error) {
	return m.reply, m.err
}

func (m *mockChatService) Ask(_ context.Context, question string) (*driving.Reply, error) {
	m.question = question
	return m.reply, m.err
}

func (m *mockChatService) RecordUpload(_ *domain.SessionState, _ *domain.UploadResult) {}

func (m *mockChatService) SendTestEmail(_ context.Context, _ string) error {
	return m.err
}

func (m *mockChatService) ClearDocuments(_ context.Context, _ *domain.SessionState) error {
	return m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	chunks []domain.RetrievedChunk
	err    error
	k      int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.k = k
	return m.chunks, m.err
}

func (m *mockRetrievalService) AssembleContext(_ []domain.RetrievedChunk) string {
	return ""
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	documents []domain.StoredDocument
	content   []byte
	err       error
	fetched   string
}

func (m *mockIngestService) Upload(_ context.Context, _ []domain.UploadFile) (*domain.UploadResult, error) {
	return &domain.UploadResult{}, m.err
}

func (m *mockIngestService) ProcessStore(_ context.Context) (*domain.ProcessResult, error) {
	return &domain.ProcessResult{}, m.err
}

func (m *mockIngestService) ListDocuments(_ context.Context) ([]domain.StoredDocument, error) {
	return m.documents, m.err
}

func (m *mockIngestService) FetchDocument(_ context.Context, key string) ([]byte, error) {
	m.fetched = key
	return m.content, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status *driving.IndexStatus
	err    error
}

func (m *mockIndexService) Status(_ context.Context) (*driving.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockIndexService) Clear(_ context.Context) error {
	return m.err
}
