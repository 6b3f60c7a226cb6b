package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/adapters/driven/notify"
	"github.com/custodia-labs/medichat/internal/core/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"MEDICHAT_STORE_BACKEND", "MEDICHAT_INDEX_BACKEND", "AWS_S3_BUCKET", "QDRANT_URL",
		"EMAIL_SMTP_SERVER", "EMAIL_SENDER", "EMAIL_PASSWORD", "EMAIL_RECEIVER",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestBootstrap_SQLite(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	svc, cleanup, err := bootstrap(context.Background(), dir)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, svc.Chat)
	assert.NotNil(t, svc.Ingest)
	assert.NotNil(t, svc.Index)
	assert.NotNil(t, svc.Retrieval)
	assert.NotNil(t, svc.Sessions)
	assert.NotNil(t, svc.Settings)

	docs, err := svc.Ingest.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.FileExists(t, filepath.Join(dir, "data", "medichat.db"))
}

func TestBootstrap_Memory(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDICHAT_STORE_BACKEND", "memory")
	t.Setenv("MEDICHAT_INDEX_BACKEND", "memory")
	dir := t.TempDir()

	svc, cleanup, err := bootstrap(context.Background(), dir)
	require.NoError(t, err)
	defer cleanup()

	snapshots, err := svc.Sessions.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, snapshots)

	assert.NoDirExists(t, filepath.Join(dir, "data"))
}

func TestBootstrap_InvalidSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDICHAT_INDEX_BACKEND", "qdrant")

	_, _, err := bootstrap(context.Background(), t.TempDir())

	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestBootstrap_ReadsDotenv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("MEDICHAT_STORE_BACKEND=memory\nMEDICHAT_INDEX_BACKEND=memory\n"), 0o600))

	svc, cleanup, err := bootstrap(context.Background(), dir)
	require.NoError(t, err)
	defer cleanup()

	settings, err := svc.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreBackendMemory, settings.Store.Backend)
	assert.Equal(t, domain.IndexBackendMemory, settings.Index.Backend)
}

func TestNewNotifier(t *testing.T) {
	dir := t.TempDir()

	n, err := newNotifier(dir, domain.EmailSettings{OperatorAddress: "ops@clinic.org"})
	require.NoError(t, err)
	outbox, ok := n.(*notify.OutboxNotifier)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "outbox"), outbox.Dir())

	n, err = newNotifier(dir, domain.EmailSettings{
		SMTPServer: "smtp.example.com",
		SMTPPort:   465,
		Sender:     "bot@example.com",
		Password:   "secret",
	})
	require.NoError(t, err)
	_, ok = n.(*notify.SMTPNotifier)
	assert.True(t, ok)

	_, err = newNotifier(dir, domain.EmailSettings{
		SMTPServer: "smtp.example.com",
		SMTPPort:   465,
		Sender:     "not-an-address",
		Password:   "secret",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
