package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsCmd_Use(t *testing.T) {
	assert.Equal(t, "documents", documentsCmd.Use)
	assert.Contains(t, documentsCmd.Aliases, "docs")
}

func TestDocumentsListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("documents", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "labs.txt")
	assert.Contains(t, out, "Key:      documents/labs.txt")
	assert.Contains(t, out, "Size:     18 B")
	assert.Contains(t, out, "Modified: 2026-03-01 09:30:00")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocumentsListCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	ts.ingest.docs = map[string][]byte{}

	out, err := executeCommand("documents", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents uploaded.")
}

func TestDocumentsGetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	tests := []struct {
		name string
		arg  string
	}{
		{name: "by filename", arg: "labs.txt"},
		{name: "by key", arg: "documents/labs.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand("documents", "get", tt.arg)
			require.NoError(t, err)
			assert.Contains(t, out, "glucose 5.4 mmol/L")
		})
	}
}

func TestDocumentsGetCmd_Output(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	target := filepath.Join(t.TempDir(), "copy.txt")
	out, err := executeCommand("documents", "get", "labs.txt", "-o", target)

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 18 B to")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "glucose 5.4 mmol/L", string(data))
}

func TestDocumentsGetCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("documents", "get", "xray.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found: documents/xray.pdf")
}

func TestDocumentsGetCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := executeCommand("documents", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
