package domain

// UploadFile is a user-supplied document awaiting ingestion.
type UploadFile struct {
	Filename string
	Content  []byte
}

// UploadFailure records a file that could not be stored or indexed.
type UploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadResult reports the outcome of ingesting a set of uploaded files.
type UploadResult struct {
	// Uploaded lists documents newly written to the content store.
	Uploaded []StoredDocument `json:"uploaded"`

	// AlreadyPresent lists documents whose key already existed.
	AlreadyPresent []StoredDocument `json:"already_present"`

	// Failed lists files that could not be stored or indexed.
	Failed []UploadFailure `json:"failed"`

	// DocumentsIndexed is the number of documents whose chunks were inserted.
	DocumentsIndexed int `json:"documents_indexed"`

	// ChunksIndexed is the number of chunks inserted into the index.
	ChunksIndexed int `json:"chunks_indexed"`
}

// ProcessResult reports the outcome of re-indexing every stored document.
type ProcessResult struct {
	// DocumentsProcessed is the number of documents indexed successfully.
	DocumentsProcessed int `json:"documents_processed"`

	// ChunksIndexed is the number of chunks inserted into the index.
	ChunksIndexed int `json:"chunks_indexed"`

	// Failed lists documents that were skipped because of an error.
	Failed []UploadFailure `json:"failed"`
}
