package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medichat/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Upload files as they appear in a directory",
	Long: `Watch a directory and upload new or modified files.

Events are debounced so files still being written are read once complete.
Hidden files and subdirectories are ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchScan     bool
	watchDebounce time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchScan, "scan", false, "Upload files already in the directory first")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before uploading")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	w, err := watch.New(ingestService, args[0], watch.WithDebounce(watchDebounce))
	if err != nil {
		return err
	}

	report := func(b watch.Batch) {
		if b.Err != nil {
			cmd.PrintErrf("Upload failed: %v\n", b.Err)
			return
		}
		printUploadResult(cmd, b.Result)
	}

	if watchScan {
		batch, err := w.Scan(cmd.Context())
		if err != nil {
			return err
		}
		if batch != nil {
			report(*batch)
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Dir())
	return w.Run(cmd.Context(), report)
}
