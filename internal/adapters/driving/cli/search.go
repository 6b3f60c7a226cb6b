package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed chunks",
	Long: `Search the vector index for the chunks most similar to the query.

The query is embedded with the configured embedding model and compared with
every indexed chunk by cosine similarity. No completion model is called.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// searchLimit is a flag for the search command.
var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "Maximum number of chunks")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	query := args[0]

	results, err := retrievalService.Retrieve(cmd.Context(), query, searchLimit)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			cmd.Println("No documents indexed. Upload documents first.")
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results: %d\n\n", len(results))
	for i, r := range results {
		cmd.Printf("%d. %s #%d (score %.3f)\n", i+1,
			domain.FilenameFromKey(r.Chunk.SourceDocumentID), r.Chunk.SequenceIndex, r.Score)
		cmd.Printf("   %s\n\n", snippet(r.Chunk.Text, 200))
	}
	return nil
}

// snippet collapses whitespace and truncates to n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
