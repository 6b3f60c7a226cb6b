package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"lab_report.pdf", "documents/lab_report.pdf"},
		{"  lab_report.pdf  ", "documents/lab_report.pdf"},
		{"/tmp/uploads/lab_report.pdf", "documents/lab_report.pdf"},
		{`C:\scans\xray.pdf`, "documents/xray.pdf"},
		{"", "documents/"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, DocumentKey(tt.filename))
		})
	}
}

func TestDocumentKey_Deterministic(t *testing.T) {
	assert.Equal(t, DocumentKey("blood_test.pdf"), DocumentKey("blood_test.pdf"))
}

func TestFilenameFromKey(t *testing.T) {
	assert.Equal(t, "lab_report.pdf", FilenameFromKey("documents/lab_report.pdf"))
	assert.Equal(t, "lab_report.pdf", FilenameFromKey(DocumentKey("lab_report.pdf")))
}
