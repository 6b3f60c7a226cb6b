package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

type stubNormaliser struct {
	name     string
	types    []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.types }
func (s *stubNormaliser) Priority() int                { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{
		ID:       raw.Key,
		Content:  string(raw.Content),
		Metadata: map[string]any{"normaliser": s.name},
	}}, nil
}

func TestMIMETypeFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"labs.pdf", "application/pdf"},
		{"LABS.PDF", "application/pdf"},
		{"notes.txt", "text/plain"},
		{"summary.md", "text/markdown"},
		{"results.csv", "text/csv"},
		{`C:\scans\report.pdf`, "application/pdf"},
		{"noextension", "application/octet-stream"},
		{"archive.unknownext", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, MIMETypeFor(tt.filename))
		})
	}
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{name: "fallback", types: []string{"text/plain"}, priority: 5},
		&stubNormaliser{name: "specific", types: []string{"text/plain"}, priority: 50},
	)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		Key:      "documents/a.txt",
		Filename: "a.txt",
		Content:  []byte("hello"),
	})

	require.NoError(t, err)
	assert.Equal(t, "specific", result.Document.Metadata["normaliser"])
	assert.Equal(t, "hello", result.Document.Content)
}

func TestRegistry_DetectsMIMEType(t *testing.T) {
	r := NewRegistry(&stubNormaliser{name: "pdf", types: []string{"application/pdf"}, priority: 50})
	raw := &domain.RawDocument{Filename: "scan.pdf"}

	_, err := r.Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", raw.MIMEType)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"text/plain"}, priority: 5})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{Filename: "x-ray.png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{types: []string{"text/plain", "text/csv"}, priority: 5},
		&stubNormaliser{types: []string{"application/pdf", "text/plain"}, priority: 50},
	)

	assert.Equal(t, []string{"application/pdf", "text/csv", "text/plain"}, r.SupportedMIMETypes())
}
