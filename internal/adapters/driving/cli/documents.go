package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage stored documents",
	Long:    `List and fetch documents held in the content store.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get [filename-or-key]",
	Short: "Print a stored document",
	Long: `Print the raw bytes of a stored document, or write them to a file with --output.

The argument may be a store key (documents/labs.pdf) or a plain filename.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsGet,
}

// documentOutput is a flag for the get command.
var documentOutput string

func init() {
	documentsGetCmd.Flags().StringVarP(&documentOutput, "output", "o", "", "Write the document to this file")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsGetCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docs, err := ingestService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].Filename)
		cmd.Printf("    Key:      %s\n", docs[i].Key)
		cmd.Printf("    Size:     %s\n", humanize.Bytes(uint64(max(docs[i].SizeBytes, 0))))
		if !docs[i].LastModified.IsZero() {
			cmd.Printf("    Modified: %s\n", docs[i].LastModified.Format("2006-01-02 15:04:05"))
		}
		if docs[i].LocationURL != "" {
			cmd.Printf("    Location: %s\n", docs[i].LocationURL)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	key := args[0]
	if !strings.HasPrefix(key, domain.DocumentKeyPrefix) {
		key = domain.DocumentKey(key)
	}

	data, err := ingestService.FetchDocument(cmd.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", key)
		}
		return fmt.Errorf("failed to fetch document: %w", err)
	}

	if documentOutput != "" {
		if err := os.WriteFile(documentOutput, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", documentOutput, err)
		}
		cmd.Printf("Wrote %s to %s\n", humanize.Bytes(uint64(len(data))), documentOutput)
		return nil
	}

	cmd.Println(string(data))
	return nil
}
