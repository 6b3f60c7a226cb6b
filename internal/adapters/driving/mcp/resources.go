package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/normalisers"
)

const (
	// uriScheme is the custom URI scheme for MediChat resources.
	uriScheme = "medichat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Ingest == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all stored medical documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{filename}",
		Name:        "document-content",
		Description: "Content of a stored document",
	}, s.handleDocumentContentResource)
}

// handleDocumentsResource returns every stored document.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Ingest.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		Filename string `json:"filename"`
		URI      string `json:"uri"`
		Size     int64  `json:"size_bytes"`
		Location string `json:"location"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			Filename: docs[i].Filename,
			URI:      uriScheme + docs[i].Key,
			Size:     docs[i].SizeBytes,
			Location: docs[i].LocationURL,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns a stored document. Text documents
// are returned as text, anything else as a blob.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	filename := extractFilename(req.Params.URI)
	if filename == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := s.ports.Ingest.FetchDocument(ctx, domain.DocumentKey(filename))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	contents := &mcp.ResourceContents{
		URI:      req.Params.URI,
		MIMEType: normalisers.MIMETypeFor(filename),
	}
	if strings.HasPrefix(contents.MIMEType, "text/") && utf8.Valid(data) {
		contents.Text = string(data)
	} else {
		contents.Blob = data
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{contents}}, nil
}

// extractFilename extracts the filename from a URI like medichat://documents/{filename}.
func extractFilename(uri string) string {
	const prefix = uriScheme + domain.DocumentKeyPrefix

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
