// Package cli provides the medichat command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
	"github.com/custodia-labs/medichat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services configured by the bootstrap.
var (
	chatService      driving.ChatService
	ingestService    driving.IngestService
	indexService     driving.IndexService
	retrievalService driving.RetrievalService
	sessionService   driving.SessionService
	settingsService  driving.SettingsService
)

// Services groups the driving ports used by commands.
type Services struct {
	Chat      driving.ChatService
	Ingest    driving.IngestService
	Index     driving.IndexService
	Retrieval driving.RetrievalService
	Sessions  driving.SessionService
	Settings  driving.SettingsService
}

// SetServices installs the services used by commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	chatService = s.Chat
	ingestService = s.Ingest
	indexService = s.Index
	retrievalService = s.Retrieval
	sessionService = s.Sessions
	settingsService = s.Settings
}

// Bootstrap builds the services for the given configuration directory.
// The returned cleanup function releases stores and clients.
type Bootstrap func(ctx context.Context, configDir string) (*Services, func(), error)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "medichat.skip-bootstrap"

var (
	verbose   bool
	configDir string

	bootstrap Bootstrap
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "medichat",
	Short: "Chat with your medical documents",
	Long: `MediChat answers questions about uploaded medical documents.

Documents are stored in a content store, split into chunks, embedded and
indexed for similarity search. Questions are answered by a completion model
using the most relevant chunks as context.

Chat also understands a few commands:
` + chatCommandHelp(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default $MEDICHAT_HOME or ~/.medichat)")
}

// Execute runs the root command. The bootstrap runs before any command
// that needs services; version and help run without it.
func Execute(ctx context.Context, b Bootstrap, buildVersion string) error {
	bootstrap = b
	if buildVersion != "" {
		version = buildVersion
	}
	defer runCleanup()
	return rootCmd.ExecuteContext(ctx)
}

// ConfigDir resolves the configuration directory from the flag value,
// MEDICHAT_HOME, or the user's home directory.
func ConfigDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if home := os.Getenv("MEDICHAT_HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".medichat"
	}
	return filepath.Join(home, ".medichat")
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if bootstrap == nil || !needsServices(cmd) {
		return nil
	}

	services, release, err := bootstrap(cmd.Context(), ConfigDir(configDir))
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = release
	return nil
}

func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipBootstrap] == "true" {
			return false
		}
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// chatCommandHelp lists the chat commands, one indented line each.
func chatCommandHelp() string {
	lines := make([]string, len(domain.ChatCommands))
	for i, c := range domain.ChatCommands {
		lines[i] = fmt.Sprintf("  %-32s %s", c.Example, c.Summary)
	}
	return strings.Join(lines, "\n")
}
