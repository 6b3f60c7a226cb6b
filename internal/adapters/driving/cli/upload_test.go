package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCmd_RequiresArgs(t *testing.T) {
	_, err := executeCommand("upload")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestUploadCmd_UploadsFiles(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()

	dir := t.TempDir()
	scan := filepath.Join(dir, "mri.txt")
	require.NoError(t, os.WriteFile(scan, []byte("no acute findings"), 0o600))
	labs := filepath.Join(dir, "labs.txt")
	require.NoError(t, os.WriteFile(labs, []byte("glucose"), 0o600))

	out, err := executeCommand("upload", scan, labs, filepath.Join(dir, "missing.txt"))

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded:        mri.txt (17 B)")
	assert.Contains(t, out, "Already present: labs.txt")
	assert.Contains(t, out, "Failed:          missing.txt")
	assert.Contains(t, out, "Indexed 1 documents (1 chunks)")

	require.Len(t, ts.ingest.uploads, 1)
	assert.Len(t, ts.ingest.uploads[0], 2)
}

func TestUploadCmd_AllFailed(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("upload", filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents uploaded")
}

func TestUploadCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	ts.ingest.failWith = errTestBackend

	file := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := executeCommand("upload", file)

	require.Error(t, err)
	assert.ErrorIs(t, err, errTestBackend)
}

func TestUploadCmd_NotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := executeCommand("upload", "a.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
