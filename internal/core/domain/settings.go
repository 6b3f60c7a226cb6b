package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// Default settings values.
const (
	DefaultCompletionBaseURL = "http://localhost:8000/v1"
	DefaultCompletionModel   = "openai/gpt-oss-20b"
	DefaultEmbeddingModel    = "BAAI/bge-m3"
	DefaultAPIKey            = "not-needed"
	DefaultSMTPServer        = "smtp.gmail.com"
	DefaultSMTPPort          = 587
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultTopK              = 10
	DefaultEmbedBatchSize    = 64
)

// StoreBackend identifies the object store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite keeps document bytes in the local database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendS3 keeps documents in an S3 or S3-compatible bucket.
	StoreBackendS3 StoreBackend = "s3"

	// StoreBackendMemory keeps documents in process memory.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendS3, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendSQLite:
		return "SQLite (local)"
	case StoreBackendS3:
		return "S3 bucket"
	case StoreBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies the vector index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores vectors in the local database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendQdrant stores vectors in a Qdrant server.
	IndexBackendQdrant IndexBackend = "qdrant"

	// IndexBackendMemory stores vectors in process memory.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendQdrant, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// ProviderSettings holds an OpenAI-compatible endpoint configuration.
type ProviderSettings struct {
	// BaseURL is the API endpoint, e.g. http://localhost:8000/v1.
	BaseURL string

	// APIKey is the bearer token; local servers accept any value.
	APIKey string

	// Model is the model name passed with each request.
	Model string
}

// IsConfigured returns true if the provider has an endpoint and a model.
func (p ProviderSettings) IsConfigured() bool {
	return p.BaseURL != "" && p.Model != ""
}

// StoreSettings configures the content store.
type StoreSettings struct {
	Backend StoreBackend

	// Bucket is the S3 bucket name.
	Bucket string

	// Region is the AWS region.
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible servers.
	Endpoint string

	// PathStyle forces path-style addressing (required by most S3-compatible servers).
	PathStyle bool
}

// IndexSettings configures the vector index.
type IndexSettings struct {
	Backend IndexBackend

	// Collection is the collection name.
	Collection string

	// QdrantURL is the Qdrant REST endpoint.
	QdrantURL string

	// QdrantAPIKey is sent as the api-key header when set.
	QdrantAPIKey string

	// BatchSize bounds the number of texts per embedding request.
	BatchSize int

	// EmbedRequestsPerSecond throttles embedding requests; 0 disables throttling.
	EmbedRequestsPerSecond float64
}

// ChunkerSettings configures text splitting.
type ChunkerSettings struct {
	ChunkSize int
	Overlap   int
}

// RetrievalSettings configures question answering.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

// EmailSettings configures the notification dispatcher.
type EmailSettings struct {
	SMTPServer string
	SMTPPort   int
	Sender     string
	Password   string

	// OperatorAddress receives every support ticket.
	OperatorAddress string

	// OutboxDir receives .eml files when SMTP is not configured.
	OutboxDir string
}

// IsConfigured returns true if SMTP delivery is possible.
func (e EmailSettings) IsConfigured() bool {
	return e.SMTPServer != "" && e.Sender != "" && e.Password != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Completion ProviderSettings
	Embedding  ProviderSettings
	Store      StoreSettings
	Index      IndexSettings
	Chunker    ChunkerSettings
	Retrieval  RetrievalSettings
	Email      EmailSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Everything works offline except the model endpoints.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Completion: ProviderSettings{
			BaseURL: DefaultCompletionBaseURL,
			APIKey:  DefaultAPIKey,
			Model:   DefaultCompletionModel,
		},
		Embedding: ProviderSettings{
			BaseURL: DefaultCompletionBaseURL,
			APIKey:  DefaultAPIKey,
			Model:   DefaultEmbeddingModel,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
			Region:  "us-east-1",
		},
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			Collection: DefaultCollectionName,
			BatchSize:  DefaultEmbedBatchSize,
		},
		Chunker: ChunkerSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Email: EmailSettings{
			SMTPServer: DefaultSMTPServer,
			SMTPPort:   DefaultSMTPPort,
		},
	}
}

// Validate checks that the settings can produce working components.
// All problems are reported together, wrapped in ErrInvalidConfiguration.
func (s AppSettings) Validate() error {
	var problems []string

	if s.Chunker.ChunkSize <= 0 {
		problems = append(problems, "chunk size must be positive")
	}
	if s.Chunker.Overlap < 0 || s.Chunker.Overlap >= s.Chunker.ChunkSize {
		problems = append(problems, "chunk overlap must be at least 0 and smaller than chunk size")
	}
	if s.Retrieval.TopK < 1 {
		problems = append(problems, "retrieval top_k must be at least 1")
	}
	if s.Index.BatchSize < 1 {
		problems = append(problems, "index batch size must be at least 1")
	}
	if !s.Store.Backend.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown store backend %q", s.Store.Backend))
	}
	if s.Store.Backend == StoreBackendS3 && s.Store.Bucket == "" {
		problems = append(problems, "s3 store requires a bucket")
	}
	if !s.Index.Backend.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown index backend %q", s.Index.Backend))
	}
	if s.Index.Backend == IndexBackendQdrant && s.Index.QdrantURL == "" {
		problems = append(problems, "qdrant index requires a url")
	}
	if s.Index.Collection == "" {
		problems = append(problems, "index collection name is empty")
	}
	if s.Email.OperatorAddress != "" && !IsValidEmail(s.Email.OperatorAddress) {
		problems = append(problems, fmt.Sprintf("operator address %q is not a valid email", s.Email.OperatorAddress))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfig derives the post-processor pipeline from the chunker settings.
func (s AppSettings) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": s.Chunker.ChunkSize,
				"overlap":    s.Chunker.Overlap,
			},
		},
	}
}
