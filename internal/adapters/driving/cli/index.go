package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect or clear the vector index",
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the index collection",
	Long: `Delete the index collection and every chunk in it.

Stored documents are kept. Run "medichat process" to index them again.`,
	Args: cobra.NoArgs,
	RunE: runIndexClear,
}

// indexClearForce skips the confirmation prompt.
var indexClearForce bool

func init() {
	indexClearCmd.Flags().BoolVarP(&indexClearForce, "force", "f", false, "Do not ask for confirmation")

	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexClearCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	status, err := indexService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get index status: %w", err)
	}

	cmd.Println("Index:")
	cmd.Printf("  Collection: %s\n", status.Collection)
	cmd.Printf("  State:      %s\n", status.State)
	cmd.Printf("  Chunks:     %d\n", status.ChunkCount)
	cmd.Printf("  Documents:  %d\n", status.DocumentCount)
	if status.EmbeddingModel != "" {
		cmd.Printf("  Model:      %s\n", status.EmbeddingModel)
	}
	return nil
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if !indexClearForce {
		cmd.Print("Delete every indexed chunk? [y/N]: ")
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := indexService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	cmd.Println("Index cleared.")
	return nil
}
