package domain

// RawDocument is the opaque content of a stored document before text extraction.
type RawDocument struct {
	// Key is the content store key.
	Key string

	// Filename is the original file name.
	Filename string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
