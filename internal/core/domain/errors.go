package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap these with context; callers match them with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a document's format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrStoreUnavailable indicates the backing object store could not be reached.
	ErrStoreUnavailable = errors.New("content store unavailable")

	// ErrInvalidConfiguration indicates settings that cannot produce a working component,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingService indicates the embedding service failed or is not configured.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrCompletionService indicates the completion model failed or is not configured.
	ErrCompletionService = errors.New("completion service error")

	// ErrInvalidEmailAddress indicates a missing or malformed email address.
	ErrInvalidEmailAddress = errors.New("invalid email address")

	// ErrEmptyIndex indicates a question was asked before any document was indexed.
	ErrEmptyIndex = errors.New("no documents indexed")

	// ErrNotifierUnavailable indicates no notification channel is configured.
	ErrNotifierUnavailable = errors.New("notifier unavailable")
)
