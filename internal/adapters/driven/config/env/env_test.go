package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/adapters/driven/storage/memory"
)

func TestNewFromMap_MapsVariables(t *testing.T) {
	base := memory.NewConfigStore()
	overlay := NewFromMap(base, map[string]string{
		"OPENAI_API_BASE": "http://gpu:8000/v1",
		"OPENAI_API_KEY":  "sk-local",
		"EMBEDDING_MODEL": "bge-small",
		"AWS_S3_BUCKET":   "medical-docs",
		"EMAIL_SMTP_PORT": "465",
		"EMAIL_RECEIVER":  "ops@clinic.org",
		"S3_PATH_STYLE":   "true",
		"UNRELATED_VAR":   "x",
	})

	assert.Equal(t, "http://gpu:8000/v1", overlay.GetString("completion.base_url"))
	assert.Equal(t, "http://gpu:8000/v1", overlay.GetString("embedding.base_url"))
	assert.Equal(t, "sk-local", overlay.GetString("embedding.api_key"))
	assert.Equal(t, "bge-small", overlay.GetString("embedding.model"))
	assert.Equal(t, "medical-docs", overlay.GetString("store.bucket"))
	assert.Equal(t, 465, overlay.GetInt("email.smtp_port"))
	assert.True(t, overlay.GetBool("store.path_style"))
	assert.Equal(t, "ops@clinic.org", overlay.GetString("email.operator"))

	v, ok := overlay.Get("email.smtp_port")
	assert.True(t, ok)
	assert.Equal(t, 465, v)
	assert.True(t, overlay.Overridden("store.bucket"))
	assert.False(t, overlay.Overridden("store.region"))
}

func TestNewFromMap_EmbeddingSpecificWins(t *testing.T) {
	overlay := NewFromMap(memory.NewConfigStore(), map[string]string{
		"OPENAI_API_BASE":       "http://llm:8000/v1",
		"OPENAI_EMBEDDING_BASE": "http://embed:8001/v1",
	})

	assert.Equal(t, "http://llm:8000/v1", overlay.GetString("completion.base_url"))
	assert.Equal(t, "http://embed:8001/v1", overlay.GetString("embedding.base_url"))
}

func TestNewFromMap_IgnoresBadValues(t *testing.T) {
	base := memory.NewConfigStore()
	require.NoError(t, base.Set("email.smtp_port", 587))

	overlay := NewFromMap(base, map[string]string{"EMAIL_SMTP_PORT": "smtp", "LLM_MODEL": "  "})

	assert.Equal(t, 587, overlay.GetInt("email.smtp_port"))
	_, ok := overlay.Get("completion.model")
	assert.False(t, ok)
}

func TestOverlay_DelegatesToBase(t *testing.T) {
	base := memory.NewConfigStore()
	overlay := NewFromMap(base, map[string]string{"LLM_MODEL": "mistral"})

	require.NoError(t, overlay.Set("retrieval.top_k", 4))
	require.NoError(t, overlay.Set("index.embed_requests_per_second", 1.5))
	require.NoError(t, overlay.Save())
	require.NoError(t, overlay.Load())

	assert.Equal(t, 4, base.GetInt("retrieval.top_k"))
	assert.Equal(t, 4, overlay.GetInt("retrieval.top_k"))
	assert.InDelta(t, 1.5, overlay.GetFloat("index.embed_requests_per_second"), 1e-9)
	assert.Equal(t, []string{"completion.model", "index.embed_requests_per_second", "retrieval.top_k"}, overlay.Keys())
	assert.Equal(t, base.Path(), overlay.Path())

	// The environment still shadows a stored value.
	require.NoError(t, overlay.Set("completion.model", "llama3"))
	assert.Equal(t, "mistral", overlay.GetString("completion.model"))
}

func TestNew_ReadsDotenvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local model server\nOPENAI_API_BASE=http://from-file:8000/v1\nLLM_MODEL=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("LLM_MODEL", "from-env")

	overlay, err := New(memory.NewConfigStore(), path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:8000/v1", overlay.GetString("completion.base_url"))
	assert.Equal(t, "from-env", overlay.GetString("completion.model"))
}

func TestVariables(t *testing.T) {
	vars := Variables()
	assert.Contains(t, vars, "OPENAI_API_KEY")
	assert.Contains(t, vars, "EMAIL_RECEIVER")
	assert.IsIncreasing(t, vars)
}
