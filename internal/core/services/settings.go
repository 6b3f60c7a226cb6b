package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCompletionBaseURL = "completion.base_url"
	keyCompletionAPIKey  = "completion.api_key"
	keyCompletionModel   = "completion.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedModel        = "embedding.model"
	keyStoreBackend      = "store.backend"
	keyStoreBucket       = "store.bucket"
	keyStoreRegion       = "store.region"
	keyStoreEndpoint     = "store.endpoint"
	keyStorePathStyle    = "store.path_style"
	keyIndexBackend      = "index.backend"
	keyIndexCollection   = "index.collection"
	keyIndexQdrantURL    = "index.qdrant_url"
	keyIndexQdrantAPIKey = "index.qdrant_api_key"
	keyIndexBatchSize    = "index.batch_size"
	keyIndexEmbedRPS     = "index.embed_requests_per_second"
	keyChunkSize         = "pipeline.chunker.chunk_size"
	keyChunkOverlap      = "pipeline.chunker.overlap"
	keyRetrievalTopK     = "retrieval.top_k"
	keySMTPServer        = "email.smtp_server"
	keySMTPPort          = "email.smtp_port"
	keyEmailSender       = "email.sender"
	keyEmailPassword     = "email.password"
	keyEmailOperator     = "email.operator"
	keyEmailOutboxDir    = "email.outbox_dir"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

// settingKinds lists every settable key with the type it is stored as.
var settingKinds = map[string]valueKind{
	keyCompletionBaseURL: kindString,
	keyCompletionAPIKey:  kindString,
	keyCompletionModel:   kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedModel:        kindString,
	keyStoreBackend:      kindString,
	keyStoreBucket:       kindString,
	keyStoreRegion:       kindString,
	keyStoreEndpoint:     kindString,
	keyStorePathStyle:    kindBool,
	keyIndexBackend:      kindString,
	keyIndexCollection:   kindString,
	keyIndexQdrantURL:    kindString,
	keyIndexQdrantAPIKey: kindString,
	keyIndexBatchSize:    kindInt,
	keyIndexEmbedRPS:     kindFloat,
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keyRetrievalTopK:     kindInt,
	keySMTPServer:        kindString,
	keySMTPPort:          kindInt,
	keyEmailSender:       kindString,
	keyEmailPassword:     kindString,
	keyEmailOperator:     kindString,
	keyEmailOutboxDir:    kindString,
}

// IsSecretKey reports whether the value of key should be masked on display.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "password")
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Completion: domain.ProviderSettings{
			BaseURL: s.getString(keyCompletionBaseURL, defaults.Completion.BaseURL),
			APIKey:  s.getString(keyCompletionAPIKey, defaults.Completion.APIKey),
			Model:   s.getString(keyCompletionModel, defaults.Completion.Model),
		},
		Embedding: domain.ProviderSettings{
			BaseURL: s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			APIKey:  s.getString(keyEmbedAPIKey, defaults.Embedding.APIKey),
			Model:   s.getString(keyEmbedModel, defaults.Embedding.Model),
		},
		Store: domain.StoreSettings{
			Backend:   domain.StoreBackend(s.getString(keyStoreBackend, string(defaults.Store.Backend))),
			Bucket:    s.configStore.GetString(keyStoreBucket),
			Region:    s.getString(keyStoreRegion, defaults.Store.Region),
			Endpoint:  s.configStore.GetString(keyStoreEndpoint),
			PathStyle: s.getBool(keyStorePathStyle, defaults.Store.PathStyle),
		},
		Index: domain.IndexSettings{
			Backend:                domain.IndexBackend(s.getString(keyIndexBackend, string(defaults.Index.Backend))),
			Collection:             s.getString(keyIndexCollection, defaults.Index.Collection),
			QdrantURL:              s.configStore.GetString(keyIndexQdrantURL),
			QdrantAPIKey:           s.configStore.GetString(keyIndexQdrantAPIKey),
			BatchSize:              s.getInt(keyIndexBatchSize, defaults.Index.BatchSize),
			EmbedRequestsPerSecond: s.configStore.GetFloat(keyIndexEmbedRPS),
		},
		Chunker: domain.ChunkerSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunker.ChunkSize),
			Overlap:   s.getInt(keyChunkOverlap, defaults.Chunker.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
		},
		Email: domain.EmailSettings{
			SMTPServer:      s.getString(keySMTPServer, defaults.Email.SMTPServer),
			SMTPPort:        s.getInt(keySMTPPort, defaults.Email.SMTPPort),
			Sender:          s.configStore.GetString(keyEmailSender),
			Password:        s.configStore.GetString(keyEmailPassword),
			OperatorAddress: s.configStore.GetString(keyEmailOperator),
			OutboxDir:       s.configStore.GetString(keyEmailOutboxDir),
		},
	}

	return settings, nil
}

// Set parses value for key, checks the resulting settings and persists them.
// Settings that would fail validation are not stored.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidConfiguration, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfiguration, key, err)
	}

	candidate := NewSettingsService(&pendingStore{ConfigStore: s.configStore, key: key, value: parsed}, nil)
	if err := candidate.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Values returns the effective value of every settable key, sorted by key.
func (s *SettingsService) Values() ([]driving.Setting, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		keyCompletionBaseURL: settings.Completion.BaseURL,
		keyCompletionAPIKey:  settings.Completion.APIKey,
		keyCompletionModel:   settings.Completion.Model,
		keyEmbedBaseURL:      settings.Embedding.BaseURL,
		keyEmbedAPIKey:       settings.Embedding.APIKey,
		keyEmbedModel:        settings.Embedding.Model,
		keyStoreBackend:      string(settings.Store.Backend),
		keyStoreBucket:       settings.Store.Bucket,
		keyStoreRegion:       settings.Store.Region,
		keyStoreEndpoint:     settings.Store.Endpoint,
		keyStorePathStyle:    strconv.FormatBool(settings.Store.PathStyle),
		keyIndexBackend:      string(settings.Index.Backend),
		keyIndexCollection:   settings.Index.Collection,
		keyIndexQdrantURL:    settings.Index.QdrantURL,
		keyIndexQdrantAPIKey: settings.Index.QdrantAPIKey,
		keyIndexBatchSize:    strconv.Itoa(settings.Index.BatchSize),
		keyIndexEmbedRPS:     strconv.FormatFloat(settings.Index.EmbedRequestsPerSecond, 'g', -1, 64),
		keyChunkSize:         strconv.Itoa(settings.Chunker.ChunkSize),
		keyChunkOverlap:      strconv.Itoa(settings.Chunker.Overlap),
		keyRetrievalTopK:     strconv.Itoa(settings.Retrieval.TopK),
		keySMTPServer:        settings.Email.SMTPServer,
		keySMTPPort:          strconv.Itoa(settings.Email.SMTPPort),
		keyEmailSender:       settings.Email.Sender,
		keyEmailPassword:     settings.Email.Password,
		keyEmailOperator:     settings.Email.OperatorAddress,
		keyEmailOutboxDir:    settings.Email.OutboxDir,
	}

	keys := s.Keys()
	out := make([]driving.Setting, 0, len(keys))
	for _, k := range keys {
		out = append(out, driving.Setting{Key: k, Value: values[k], Secret: IsSecretKey(k)})
	}
	return out, nil
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return fmt.Errorf("AI validator not configured")
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(settings.Embedding)
}

// ValidateCompletionConfig validates the current completion configuration by pinging the provider.
func (s *SettingsService) ValidateCompletionConfig() error {
	if s.aiValidator == nil {
		return fmt.Errorf("AI validator not configured")
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateCompletion(settings.Completion)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func parseValue(kind valueKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	default:
		return value, nil
	}
}

// pendingStore overlays one unsaved value on a config store.
type pendingStore struct {
	driven.ConfigStore
	key   string
	value any
}

func (p *pendingStore) Get(key string) (any, bool) {
	if key == p.key {
		return p.value, true
	}
	return p.ConfigStore.Get(key)
}

func (p *pendingStore) GetString(key string) string {
	if v, ok := p.value.(string); ok && key == p.key {
		return v
	}
	return p.ConfigStore.GetString(key)
}

func (p *pendingStore) GetInt(key string) int {
	if v, ok := p.value.(int); ok && key == p.key {
		return v
	}
	return p.ConfigStore.GetInt(key)
}

func (p *pendingStore) GetFloat(key string) float64 {
	if v, ok := p.value.(float64); ok && key == p.key {
		return v
	}
	return p.ConfigStore.GetFloat(key)
}

func (p *pendingStore) GetBool(key string) bool {
	if v, ok := p.value.(bool); ok && key == p.key {
		return v
	}
	return p.ConfigStore.GetBool(key)
}
