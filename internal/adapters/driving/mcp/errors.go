// Package mcp provides an MCP (Model Context Protocol) server adapter for MediChat.
// It lets AI assistants ask questions against the indexed medical documents
// and read the stored documents.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
