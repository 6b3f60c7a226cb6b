package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/medichat/internal/adapters/driven/ai"
	"github.com/custodia-labs/medichat/internal/adapters/driven/config/env"
	"github.com/custodia-labs/medichat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/medichat/internal/adapters/driven/notify"
	"github.com/custodia-labs/medichat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/medichat/internal/adapters/driven/storage/s3"
	"github.com/custodia-labs/medichat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/medichat/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/medichat/internal/adapters/driving/cli"
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/core/services"
	"github.com/custodia-labs/medichat/internal/logger"
	"github.com/custodia-labs/medichat/internal/normalisers"
	"github.com/custodia-labs/medichat/internal/normalisers/pdf"
	"github.com/custodia-labs/medichat/internal/normalisers/plaintext"
	"github.com/custodia-labs/medichat/internal/postprocessors"
)

// backends holds the driven adapters selected by settings.
type backends struct {
	objects driven.ObjectStore
	index   driven.VectorIndex
	archive driven.SessionArchive
	closers []func()
}

// bootstrap builds every service from the configuration directory.
// Settings come from config.toml, then .env, then the environment.
func bootstrap(ctx context.Context, configDir string) (*cli.Services, func(), error) {
	fileStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	configStore, err := env.New(fileStore, filepath.Join(configDir, ".env"), ".env")
	if err != nil {
		return nil, nil, fmt.Errorf("reading environment: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	b, err := openBackends(ctx, configDir, *settings)
	if err != nil {
		return nil, nil, err
	}

	models := ai.Init(*settings)
	for _, w := range models.Warnings {
		logger.Warn("%s", w)
	}

	cleanup := func() {
		models.Close()
		b.close()
	}

	pipeline, err := postprocessors.NewDefaultRegistry().BuildPipeline(settings.PipelineConfig())
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("building pipeline: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), services.DefaultTemplates())
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("opening prompts: %w", err)
	}

	notifier, err := newNotifier(configDir, settings.Email)
	if err != nil {
		logger.Warn("email disabled: %v", err)
	}

	manager := services.NewIndexManager(b.index, models.EmbeddingService, settings.Index.Collection,
		services.WithBatchSize(settings.Index.BatchSize),
		services.WithEmbedRateLimit(settings.Index.EmbedRequestsPerSecond),
	)
	gateway := services.NewContentGateway(b.objects)
	registry := normalisers.NewRegistry(plaintext.New(), pdf.New())
	ingestor := services.NewIngestor(gateway, registry, pipeline, manager)
	retriever := services.NewRetriever(b.index, models.EmbeddingService, settings.Index.Collection)

	chat := services.NewChatService(
		services.NewRouter(),
		retriever,
		manager,
		ingestor,
		models.CompletionService,
		notifier,
		b.archive,
		services.NewReporter(prompts),
		settings.Retrieval.TopK,
	)

	logger.Debug("store=%s index=%s collection=%s", settings.Store.Backend, settings.Index.Backend, settings.Index.Collection)

	return &cli.Services{
		Chat:      chat,
		Ingest:    ingestor,
		Index:     services.NewIndexService(manager, gateway),
		Retrieval: retriever,
		Sessions:  services.NewSessionService(b.archive),
		Settings:  settingsService,
	}, cleanup, nil
}

// openBackends opens the object store, vector index and session archive.
// The local database is opened once and shared by every sqlite-backed part.
func openBackends(ctx context.Context, configDir string, settings domain.AppSettings) (*backends, error) {
	b := &backends{}

	var db *sqlite.Store
	openDB := func() (*sqlite.Store, error) {
		if db != nil {
			return db, nil
		}
		store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		db = store
		b.closers = append(b.closers, func() { _ = store.Close() })
		return db, nil
	}

	switch settings.Store.Backend {
	case domain.StoreBackendS3:
		store, err := s3.New(ctx, s3.Config{
			Bucket:    settings.Store.Bucket,
			Region:    settings.Store.Region,
			Endpoint:  settings.Store.Endpoint,
			PathStyle: settings.Store.PathStyle,
		})
		if err != nil {
			b.close()
			return nil, fmt.Errorf("opening s3 store: %w", err)
		}
		b.objects = store
	case domain.StoreBackendMemory:
		b.objects = memory.NewObjectStore()
	default:
		store, err := openDB()
		if err != nil {
			return nil, err
		}
		b.objects = store.ObjectStore()
	}

	switch settings.Index.Backend {
	case domain.IndexBackendQdrant:
		index, err := qdrant.New(qdrant.Config{
			URL:    settings.Index.QdrantURL,
			APIKey: settings.Index.QdrantAPIKey,
		})
		if err != nil {
			b.close()
			return nil, fmt.Errorf("opening qdrant index: %w", err)
		}
		b.index = index
	case domain.IndexBackendMemory:
		b.index = memory.NewVectorIndex()
	default:
		store, err := openDB()
		if err != nil {
			b.close()
			return nil, err
		}
		b.index = store.VectorIndex()
	}

	// Saved sessions stay local unless everything runs in memory.
	if settings.Store.Backend == domain.StoreBackendMemory && settings.Index.Backend == domain.IndexBackendMemory {
		b.archive = memory.NewSessionArchive()
	} else {
		store, err := openDB()
		if err != nil {
			b.close()
			return nil, err
		}
		b.archive = store.SessionArchive()
	}

	return b, nil
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// newNotifier uses SMTP when credentials are configured and falls back to
// writing .eml files into the outbox directory.
func newNotifier(configDir string, email domain.EmailSettings) (driven.Notifier, error) {
	if email.IsConfigured() {
		n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Server:   email.SMTPServer,
			Port:     email.SMTPPort,
			Sender:   email.Sender,
			Password: email.Password,
			Operator: email.OperatorAddress,
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	}

	dir := email.OutboxDir
	if dir == "" {
		dir = filepath.Join(configDir, "outbox")
	}
	n, err := notify.NewOutboxNotifier(dir, email.Sender, email.OperatorAddress)
	if err != nil {
		return nil, err
	}
	logger.Debug("email: writing messages to %s", n.Dir())
	return n, nil
}
