package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockEmbedder implements driven.EmbeddingService. Texts without a fixed
// vector are embedded as letter frequencies, so similar words score high.
type mockEmbedder struct {
	mu      sync.Mutex
	dims    int
	vectors map[string][]float32
	err     error
	calls   int
	batches [][]string
	short   bool
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: 26, vectors: make(map[string][]float32)}
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batches = append(m.batches, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }

func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockCompletion implements driven.CompletionService and records prompts.
type mockCompletion struct {
	answer   string
	err      error
	messages [][]driven.ChatMessage
}

func (m *mockCompletion) Chat(_ context.Context, msgs []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.messages = append(m.messages, msgs)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockCompletion) ModelName() string { return "mock-llm" }

func (m *mockCompletion) Ping(_ context.Context) error { return m.err }

func (m *mockCompletion) Close() error { return nil }

func (m *mockCompletion) lastPrompt() string {
	if len(m.messages) == 0 {
		return ""
	}
	msgs := m.messages[len(m.messages)-1]
	return msgs[len(msgs)-1].Content
}

// sentMail is one message captured by mockNotifier.
type sentMail struct {
	kind    string
	subject string
	body    string
	to      string
}

// mockNotifier implements driven.Notifier.
type mockNotifier struct {
	sent      []sentMail
	err       error
	recipient string
}

func (m *mockNotifier) TicketRecipient() string { return m.recipient }

func (m *mockNotifier) SendReport(_ context.Context, subject, body, to string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: "report", subject: subject, body: body, to: to})
	return nil
}

func (m *mockNotifier) SendTicket(_ context.Context, subject, body, replyTo string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: "ticket", subject: subject, body: body, to: replyTo})
	return nil
}

// mockPromptStore implements driven.PromptStore from the built-in templates.
type mockPromptStore struct {
	overrides map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if t, ok := m.overrides[name]; ok {
		return t, nil
	}
	if t, ok := DefaultTemplates()[name]; ok {
		return t, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockNormaliser implements driven.NormaliserRegistry by treating bytes as text.
type mockNormaliser struct {
	err error
}

func (m *mockNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if strings.HasSuffix(raw.Filename, ".bin") {
		return nil, domain.ErrUnsupportedType
	}
	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:      raw.Key,
			Title:   raw.Filename,
			Content: string(raw.Content),
		},
	}, nil
}

func (m *mockNormaliser) Register(_ driven.Normaliser) {}

func (m *mockNormaliser) SupportedMIMETypes() []string { return []string{"text/plain"} }
