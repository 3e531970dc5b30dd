package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest chat exports into the archive",
	Long: `Scans the data directory for chat export files, parses them into
conversations, embeds them, and stores them for search.

Re-running ingest is safe: unchanged exports are replaced with
identical content, changed exports are replaced wholesale.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching for changed exports after the initial scan")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestOrchestrator == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()

	cmd.Println("Ingesting chat exports...")
	report, err := ingestOrchestrator.IngestAll(ctx)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d of %d exports (%d messages, %d chunks).\n",
		report.FilesIngested, report.FilesSeen, report.Messages, report.Chunks)

	if len(report.Failures) > 0 {
		cmd.Printf("\n%d export(s) failed:\n", len(report.Failures))
		for _, failure := range report.Failures {
			if failure.URI != "" {
				cmd.Printf("  %s: %v\n", failure.URI, failure.Err)
			} else {
				cmd.Printf("  %v\n", failure.Err)
			}
		}
	}

	if !ingestWatch {
		return nil
	}

	cmd.Println("\nWatching for changes. Press Ctrl+C to stop.")
	if err := ingestOrchestrator.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
