package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about the uploaded documents",
	Long: `Answer a single question using the indexed documents as context.

The answer is not recorded in any session. Use "medichat chat" for a
conversation with commands and email reports.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// askQuiet suppresses insights and sources.
var askQuiet bool

func init() {
	askCmd.Flags().BoolVarP(&askQuiet, "quiet", "q", false, "Print only the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	reply, err := chatService.Ask(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askQuiet {
		cmd.Println(reply.Text)
	} else {
		printReply(cmd, reply)
	}

	if reply.Err != nil && !errors.Is(reply.Err, domain.ErrEmptyIndex) {
		return reply.Err
	}
	return nil
}

// printReply writes the reply text followed by its insights and sources.
func printReply(cmd *cobra.Command, reply *driving.Reply) {
	cmd.Println(reply.Text)

	if in := reply.Insights; in != nil {
		cmd.Println()
		cmd.Printf("  Confidence: %s", in.ConfidenceLabel())
		if in.QueryComplexity != "" {
			cmd.Printf("  Complexity: %s", in.QueryComplexity)
		}
		cmd.Printf("  Time: %ss\n", in.ResponseSeconds())
		if len(in.MedicalKeywords) > 0 {
			cmd.Printf("  Keywords:   %s\n", strings.Join(in.MedicalKeywords, ", "))
		}
	}

	if len(reply.Sources) > 0 {
		cmd.Println("  Sources:")
		for i := range reply.Sources {
			src := reply.Sources[i]
			cmd.Printf("    [%d] %s #%d (%.3f)\n", i+1,
				domain.FilenameFromKey(src.Chunk.SourceDocumentID), src.Chunk.SequenceIndex, src.Score)
		}
	}
}
