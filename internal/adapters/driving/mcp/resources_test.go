package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

func TestExtractFilename(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "medichat://documents/labs.pdf",
			expected: "labs.pdf",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/labs.pdf",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "medichat://documents/a/b.txt",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractFilename(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		ingest := &mockIngestService{documents: []domain.StoredDocument{
			{Key: "documents/labs.pdf", Filename: "labs.pdf", SizeBytes: 2048, LocationURL: "s3://bucket/documents/labs.pdf"},
		}}
		server := newTestServer(t, &Ports{Ingest: ingest})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("medichat://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"filename": "labs.pdf"`)
		assert.Contains(t, result.Contents[0].Text, `"uri": "medichat://documents/labs.pdf"`)
		assert.Contains(t, result.Contents[0].Text, "s3://bucket/documents/labs.pdf")
	})

	t.Run("empty store returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{}})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("medichat://documents"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("store failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{err: domain.ErrStoreUnavailable}})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("medichat://documents"))
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("text document returned as text", func(t *testing.T) {
		ingest := &mockIngestService{content: []byte("Glucose 5.4 mmol/L")}
		server := newTestServer(t, &Ports{Ingest: ingest})

		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("medichat://documents/labs.txt"))

		require.NoError(t, err)
		assert.Equal(t, "documents/labs.txt", ingest.fetched)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "Glucose 5.4 mmol/L", result.Contents[0].Text)
		assert.Empty(t, result.Contents[0].Blob)
	})

	t.Run("pdf returned as blob", func(t *testing.T) {
		ingest := &mockIngestService{content: []byte("%PDF-1.7")}
		server := newTestServer(t, &Ports{Ingest: ingest})

		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("medichat://documents/scan.pdf"))

		require.NoError(t, err)
		assert.Equal(t, "application/pdf", result.Contents[0].MIMEType)
		assert.Equal(t, []byte("%PDF-1.7"), result.Contents[0].Blob)
		assert.Empty(t, result.Contents[0].Text)
	})

	t.Run("missing document", func(t *testing.T) {
		ingest := &mockIngestService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Ingest: ingest})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("medichat://documents/none.txt"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid URI", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{}})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("medichat://invalid/uri"))
		assert.Error(t, err)
	})

	t.Run("fetch failure", func(t *testing.T) {
		ingest := &mockIngestService{err: errors.New("connection reset")}
		server := newTestServer(t, &Ports{Ingest: ingest})

		_, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("medichat://documents/labs.txt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}
