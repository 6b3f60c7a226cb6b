package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload and index documents",
	Long: `Upload one or more documents to the content store and index them.

Files whose name is already stored are reported as already present and are
not overwritten. Supported formats are plain text, markdown and PDF.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	files, unreadable := readUploadFiles(args)
	result := &domain.UploadResult{}
	if len(files) > 0 {
		var err error
		result, err = ingestService.Upload(cmd.Context(), files)
		if err != nil {
			return fmt.Errorf("failed to upload: %w", err)
		}
	}
	result.Failed = append(unreadable, result.Failed...)

	printUploadResult(cmd, result)

	if len(result.Failed) == len(args) {
		return errors.New("no documents uploaded")
	}
	return nil
}

// readUploadFiles loads files from disk. Unreadable paths become failures.
func readUploadFiles(paths []string) ([]domain.UploadFile, []domain.UploadFailure) {
	files := make([]domain.UploadFile, 0, len(paths))
	var failed []domain.UploadFailure
	for _, p := range paths {
		name := filepath.Base(p)
		data, err := os.ReadFile(p)
		if err != nil {
			failed = append(failed, domain.UploadFailure{Filename: name, Error: err.Error()})
			continue
		}
		files = append(files, domain.UploadFile{Filename: name, Content: data})
	}
	return files, failed
}

func printUploadResult(cmd *cobra.Command, result *domain.UploadResult) {
	for _, doc := range result.Uploaded {
		cmd.Printf("  Uploaded:        %s (%s)\n", doc.Filename, humanize.Bytes(uint64(max(doc.SizeBytes, 0))))
	}
	for _, doc := range result.AlreadyPresent {
		cmd.Printf("  Already present: %s\n", doc.Filename)
	}
	for _, f := range result.Failed {
		cmd.Printf("  Failed:          %s: %s\n", f.Filename, f.Error)
	}
	cmd.Printf("\nIndexed %d documents (%d chunks)\n", result.DocumentsIndexed, result.ChunksIndexed)
}
