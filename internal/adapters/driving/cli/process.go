package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Index every stored document",
	Long: `Read every document in the content store, extract its text and index
the resulting chunks.

Use --rebuild to drop the index collection first. Without it, chunks are
added to the existing collection.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

// processRebuild is a flag for the process command.
var processRebuild bool

func init() {
	processCmd.Flags().BoolVar(&processRebuild, "rebuild", false, "Clear the index before processing")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()

	if processRebuild {
		if indexService == nil {
			return errors.New("index service not configured")
		}
		if err := indexService.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		cmd.Println("Index cleared.")
	}

	cmd.Println("Processing stored documents...")

	result, err := ingestService.ProcessStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to process documents: %w", err)
	}

	for _, f := range result.Failed {
		cmd.Printf("  Failed: %s: %s\n", f.Filename, f.Error)
	}
	cmd.Printf("Indexed %d documents (%d chunks)\n", result.DocumentsProcessed, result.ChunksIndexed)
	return nil
}
