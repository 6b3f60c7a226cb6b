// Package domain defines the core business entities for MediChat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - StoredDocument: A document persisted in the content store
//   - Chunk: An indexable slice of extracted document text
//   - IndexCollection: The vector collection holding chunk embeddings
//   - SessionState: The running conversation and its counters
//   - CommandIntent: The classified meaning of a single chat turn
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
