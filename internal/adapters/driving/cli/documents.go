package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatlore/chatlore/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage indexed conversations",
	Long:  `List indexed conversations, show one, or summarise the archive.`,
	RunE:  runDocumentsList,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed conversations",
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show one conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the archive",
	RunE:  runDocumentsStats,
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsStatsCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No conversations indexed yet. Run 'chatlore ingest' first.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].Name)
		cmd.Printf("    ID:       %s\n", docs[i].ID)
		cmd.Printf("    Messages: %d\n", docs[i].MessageCount)
		cmd.Printf("    Span:     %s to %s\n",
			docs[i].SpanStart.Format(domain.RenderTimeLayout),
			docs[i].SpanEnd.Format(domain.RenderTimeLayout))
		cmd.Println()
	}
	cmd.Printf("Total: %d conversations\n", len(docs))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no conversation with ID %s", args[0])
		}
		return fmt.Errorf("loading conversation: %w", err)
	}

	cmd.Printf("Conversation: %s\n\n", doc.Name)
	cmd.Printf("  ID:       %s\n", doc.ID)
	cmd.Printf("  URI:      %s\n", doc.URI)
	cmd.Printf("  Messages: %d\n", doc.MessageCount)
	cmd.Printf("  Span:     %s to %s\n",
		doc.SpanStart.Format(domain.RenderTimeLayout),
		doc.SpanEnd.Format(domain.RenderTimeLayout))
	cmd.Printf("  Ingested: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentsStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	cmd.Println("Archive")
	cmd.Println("=======")
	cmd.Printf("  Conversations: %d\n", stats.Documents)
	cmd.Printf("  Messages:      %d\n", stats.Messages)
	cmd.Printf("  Chunks:        %d\n", stats.Chunks)
	if !stats.SpanStart.IsZero() {
		cmd.Printf("  Span:          %s to %s\n",
			stats.SpanStart.Format(domain.RenderTimeLayout),
			stats.SpanEnd.Format(domain.RenderTimeLayout))
	}
	if stats.Model != "" {
		cmd.Printf("  Embedding:     %s (%d dimensions)\n", stats.Model, stats.Dimension)
	}
	return nil
}
