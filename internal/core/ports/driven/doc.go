// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ObjectStore: Document bytes persistence (S3, SQLite blobs)
//   - VectorIndex: Chunk vector storage and similarity search (SQLite, Qdrant)
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - CompletionService: Answers questions from retrieved context
//   - NormaliserRegistry: Extracts text from uploaded files
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt and email templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Notifier: Email delivery. Without it, report and ticket commands fail with a reply.
//   - SessionArchive: Session snapshot persistence. Without it, saved sessions are only emailed.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
