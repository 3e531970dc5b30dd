package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chatlore/chatlore/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the chat archive",
	Long: `Performs semantic similarity search across all ingested
conversations and prints the most relevant excerpts.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	topK := searchTopK
	if !cmd.Flags().Changed("top-k") {
		topK = configuredTopK(topK)
	}

	results, err := searchService.Search(cmd.Context(), args[0], topK)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyStore) {
			cmd.Println("Nothing to search yet. Run 'chatlore ingest' first.")
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

// searchResultJSON is the stable JSON shape for one hit.
type searchResultJSON struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	Conversation string  `json:"conversation"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i, r := range results {
		out[i] = searchResultJSON{
			ChunkID:      r.Chunk.ID,
			DocumentID:   r.Document.ID,
			Conversation: r.Document.Name,
			Score:        r.Score,
			Content:      r.Chunk.Content,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, r := range results {
		cmd.Printf("[%d] %s (%.3f)\n", i+1, r.Document.Name, r.Score)
		for _, line := range strings.Split(r.Chunk.Content, "\n") {
			cmd.Printf("    %s\n", line)
		}
		cmd.Println()
	}
	return nil
}
