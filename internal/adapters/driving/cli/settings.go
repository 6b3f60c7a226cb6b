package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure model endpoints, storage backends, chunking,
retrieval and email delivery.

Environment variables (and a .env file in the configuration directory)
take precedence over values stored with "settings set".`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Validate and store a single setting.

Run "medichat settings keys" for the list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetPasswordCmd = &cobra.Command{
	Use:   "set-password [key]",
	Short: "Set an API key or password without echoing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetPassword,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the embedding and completion endpoints",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

var settingsTestEmailCmd = &cobra.Command{
	Use:   "test-email [address]",
	Short: "Send a test report email",
	Long: `Send a fixed analysis report to verify email delivery.

Without an address, the operator address (email.operator) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsTestEmail,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetPasswordCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsTestEmailCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	width := 0
	for _, v := range values {
		width = max(width, len(v.Key))
	}

	cmd.Println("Settings:")
	for _, v := range values {
		value := v.Value
		switch {
		case value == "":
			value = "(not set)"
		case v.Secret:
			value = maskAPIKey(value)
		}
		cmd.Printf("  %-*s  %s\n", width, v.Key, value)
	}

	cmd.Println()
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Validation: %v\n", err)
	} else {
		cmd.Println("Validation: OK")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsSetPassword(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	secret, err := isSecretSetting(key)
	if err != nil {
		return err
	}
	if !secret {
		return fmt.Errorf("%s is not a secret setting, use \"settings set\"", key)
	}

	cmd.Printf("%s: ", key)
	value := readPassword()
	cmd.Println()
	if value == "" {
		return errors.New("no value entered")
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	failed := false

	cmd.Print("Embedding endpoint:  ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED (%v)\n", err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	cmd.Print("Completion endpoint: ")
	if err := settingsService.ValidateCompletionConfig(); err != nil {
		cmd.Printf("FAILED (%v)\n", err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	if failed {
		return errors.New("provider check failed")
	}
	return nil
}

func runSettingsTestEmail(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	var to string
	if len(args) == 1 {
		to = args[0]
	} else {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		to = settings.Email.OperatorAddress
		if to == "" {
			return errors.New("no address given and email.operator is not set")
		}
	}

	if err := chatService.SendTestEmail(cmd.Context(), to); err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}

	cmd.Printf("Test email sent to %s\n", to)
	return nil
}

func isSecretSetting(key string) (bool, error) {
	values, err := settingsService.Values()
	if err != nil {
		return false, fmt.Errorf("failed to get settings: %w", err)
	}
	for _, v := range values {
		if v.Key == key {
			return v.Secret, nil
		}
	}
	return false, fmt.Errorf("unknown setting: %s", key)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
