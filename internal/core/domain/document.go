package domain

import (
	"path"
	"strings"
	"time"
)

// DocumentKeyPrefix is the namespace under which uploaded documents are stored.
const DocumentKeyPrefix = "documents/"

// StoredDocument describes a document persisted in the content store.
// Its identity is Key; no two stored documents share a key.
type StoredDocument struct {
	// Key is the store key, derived from the filename.
	Key string `json:"key"`

	// Filename is the original file name.
	Filename string `json:"filename"`

	// SizeBytes is the stored object size.
	SizeBytes int64 `json:"size_bytes"`

	// LastModified is when the object was last written.
	LastModified time.Time `json:"last_modified"`

	// LocationURL addresses the object in its backing store (e.g. s3://bucket/key).
	LocationURL string `json:"location_url"`
}

// DocumentKey derives the store key for a filename.
// The same filename always maps to the same key so repeated uploads dedup.
func DocumentKey(filename string) string {
	name := strings.TrimSpace(strings.ReplaceAll(filename, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == "/" {
		name = ""
	}
	return DocumentKeyPrefix + name
}

// FilenameFromKey recovers the filename portion of a store key.
func FilenameFromKey(key string) string {
	return path.Base(key)
}

// Document is the text extracted from a stored document.
// It is the input of the chunking pipeline.
type Document struct {
	// ID identifies the document; for stored documents this is the store key.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains extractor-specific key-value pairs.
	Metadata map[string]any
}

// Chunk is a bounded substring of a document's extracted text,
// the unit that is embedded and indexed for retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// SourceDocumentID links to the Document the chunk was cut from.
	SourceDocumentID string

	// SequenceIndex is the ordinal position within the source document.
	SequenceIndex int

	// Embedding is the vector representation, set by the index manager.
	Embedding []float32
}
