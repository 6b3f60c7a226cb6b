package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse saved chat sessions",
	Long:  `List and show session snapshots saved with the "save session" chat command.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a saved session as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

// sessionsLimit is a flag for the list command.
var sessionsLimit int

func init() {
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum number of sessions")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	snapshots, err := sessionService.List(cmd.Context(), sessionsLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(snapshots) == 0 {
		cmd.Println("No saved sessions.")
		return nil
	}

	for i := range snapshots {
		s := snapshots[i]
		cmd.Printf("  %s  %s  %d messages, %d documents",
			s.SessionID, s.Timestamp.Format("2006-01-02 15:04:05"), s.MessageCount, s.DocumentCount)
		if s.Email != "" {
			cmd.Printf("  <%s>", s.Email)
		}
		cmd.Println()
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	snapshot, err := sessionService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("session not found: %s", args[0])
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	out, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	cmd.Print(string(out))
	return nil
}
