package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about the uploaded documents",
	Long: `Start a line-based chat session.

Each line is either a question or one of the chat commands:
` + chatCommandHelp() + `

Local commands:
  /upload <file>...   upload and index files into this session
  /email <address>    set the address used for session summaries
  /clear              delete every indexed chunk and reset the session
  exit                end the session

Use -m to send messages without an interactive prompt.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var (
	chatMessages []string
	chatEmail    string
)

func init() {
	chatCmd.Flags().StringArrayVarP(&chatMessages, "message", "m", nil, "Send a message and exit (repeatable)")
	chatCmd.Flags().StringVar(&chatEmail, "email", "", "Receiver address for session summaries")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	session, err := chatService.NewSession(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	if chatEmail != "" {
		if err := session.SetReceiverEmail(chatEmail); err != nil {
			return fmt.Errorf("invalid --email: %w", err)
		}
	}

	if len(chatMessages) > 0 {
		for _, m := range chatMessages {
			if err := chatTurn(cmd, session, m); err != nil {
				return err
			}
		}
		return nil
	}

	cmd.Println("Ask a question about your uploaded medical documents. Type 'exit' to quit.")
	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		line, readErr := reader.ReadString('\n')
		text := strings.TrimSpace(line)

		switch {
		case text == "":
		case text == "exit" || text == "quit":
			return nil
		case strings.HasPrefix(text, "/upload"):
			chatUpload(cmd, session, strings.Fields(strings.TrimPrefix(text, "/upload")))
		case strings.HasPrefix(text, "/email"):
			addr := strings.TrimSpace(strings.TrimPrefix(text, "/email"))
			if addr == "" {
				cmd.Println("Usage: /email <address>")
			} else if err := session.SetReceiverEmail(addr); err != nil {
				cmd.Printf("Invalid address: %v\n", err)
			} else {
				cmd.Printf("Session summaries will be sent to %s\n", addr)
			}
		case text == "/clear":
			if err := chatService.ClearDocuments(cmd.Context(), session); err != nil {
				cmd.Printf("Clear failed: %v\n", err)
			} else {
				cmd.Println("Index cleared. Upload or process documents to continue.")
			}
		default:
			if err := chatTurn(cmd, session, text); err != nil {
				return err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				cmd.Println()
				return nil
			}
			return readErr
		}
	}
}

func chatTurn(cmd *cobra.Command, session *domain.SessionState, text string) error {
	reply, err := chatService.Handle(cmd.Context(), session, text)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	printReply(cmd, reply)
	cmd.Println()
	return nil
}

func chatUpload(cmd *cobra.Command, session *domain.SessionState, paths []string) {
	if len(paths) == 0 {
		cmd.Println("Usage: /upload <file>...")
		return
	}
	if ingestService == nil {
		cmd.Println("Uploads are not available.")
		return
	}

	files, unreadable := readUploadFiles(paths)
	result := &domain.UploadResult{}
	if len(files) > 0 {
		var err error
		result, err = ingestService.Upload(cmd.Context(), files)
		if err != nil {
			cmd.Printf("Upload failed: %v\n", err)
			return
		}
	}
	result.Failed = append(unreadable, result.Failed...)

	chatService.RecordUpload(session, result)
	printUploadResult(cmd, result)
}
