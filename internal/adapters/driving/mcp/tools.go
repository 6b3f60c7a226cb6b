package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the uploaded medical documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string        `json:"answer"`
	Confidence string        `json:"confidence,omitempty"`
	Keywords   []string      `json:"keywords,omitempty"`
	Sources    []ChunkOutput `json:"sources,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find similar chunks for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of chunks to return (default 10)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	DocumentKey string  `json:"document_key"`
	Sequence    int     `json:"sequence"`
	Score       float64 `json:"score"`
	Text        string  `json:"text"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []domain.StoredDocument `json:"documents"`
	Count     int                     `json:"count"`
}

// IndexStatusInput is the (empty) input schema for the index_status tool.
type IndexStatusInput struct{}

// IndexStatusOutput is the output schema for the index_status tool.
type IndexStatusOutput struct {
	Collection     string `json:"collection"`
	State          string `json:"state"`
	Chunks         int    `json:"chunks"`
	Documents      int    `json:"documents"`
	EmbeddingModel string `json:"embedding_model"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the uploaded medical documents",
	}, s.handleAsk)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Return the document chunks most similar to a query",
		}, s.handleRetrieve)
	}

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the documents in the content store",
		}, s.handleListDocuments)
	}

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_status",
			Description: "Report the state of the vector index",
		}, s.handleIndexStatus)
	}
}

// handleAsk answers a question. Failures with a user-facing reply are
// returned in the output rather than as a tool error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	reply, err := s.ports.Chat.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  reply.Text,
		Sources: chunkOutputs(reply.Sources),
	}
	if reply.Insights != nil {
		output.Confidence = reply.Insights.ConfidenceLabel()
		output.Keywords = reply.Insights.MedicalKeywords
	}
	if reply.Err != nil {
		output.Error = reply.Err.Error()
	}
	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = domain.DefaultTopK
	}

	chunks, err := s.ports.Retrieval.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{Chunks: chunkOutputs(chunks), Count: len(chunks)}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Ingest.ListDocuments(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	if docs == nil {
		docs = []domain.StoredDocument{}
	}
	return nil, ListDocumentsOutput{Documents: docs, Count: len(docs)}, nil
}

// handleIndexStatus handles the index_status tool invocation.
func (s *Server) handleIndexStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, IndexStatusOutput{}, err
	}
	return nil, IndexStatusOutput{
		Collection:     status.Collection,
		State:          status.State.String(),
		Chunks:         status.ChunkCount,
		Documents:      status.DocumentCount,
		EmbeddingModel: status.EmbeddingModel,
	}, nil
}

func chunkOutputs(chunks []domain.RetrievedChunk) []ChunkOutput {
	out := make([]ChunkOutput, len(chunks))
	for i := range chunks {
		out[i] = ChunkOutput{
			DocumentKey: chunks[i].Chunk.SourceDocumentID,
			Sequence:    chunks[i].Chunk.SequenceIndex,
			Score:       chunks[i].Score,
			Text:        chunks[i].Chunk.Text,
		}
	}
	return out
}
