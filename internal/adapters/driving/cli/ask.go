package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

var (
	askTopK       int
	askNoGenerate bool
	askShowSrc    bool
	askJSON       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your chat archive",
	Long: `Retrieves the most relevant excerpts for the question and, when a
generator is configured, produces a grounded answer from them.

Without a configured generator (or with --no-generate) the command
prints the retrieved excerpts instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 5, "number of excerpts to retrieve")
	askCmd.Flags().BoolVar(&askNoGenerate, "no-generate", false, "skip generation, show excerpts only")
	askCmd.Flags().BoolVar(&askShowSrc, "sources", false, "print source excerpts below the answer")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and sources as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	topK := askTopK
	if !cmd.Flags().Changed("top-k") {
		topK = configuredTopK(topK)
	}

	opts := driving.AskOptions{
		TopK:       topK,
		NoGenerate: askNoGenerate,
	}
	if !askJSON {
		// Stream fragments straight to the terminal; JSON mode buffers.
		opts.OnFragment = func(fragment string) {
			cmd.Print(fragment)
		}
	}

	answer, err := askService.Ask(cmd.Context(), args[0], opts)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyStore) {
			cmd.Println("Nothing to ask about yet. Run 'chatlore ingest' first.")
			return nil
		}
		if !askJSON && answer != nil && answer.Text != "" {
			// Partial answer survived a mid-stream failure.
			cmd.Println()
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, answer)
	}

	if answer.Generated {
		// Streamed output has no trailing newline of its own.
		cmd.Println()
	} else {
		cmd.Println(answer.Text)
	}

	// The retrieval-only digest already lists its sources.
	if askShowSrc && answer.Generated && len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, src.Document.Name, src.Score)
		}
	}
	return nil
}

// askAnswerJSON is the stable JSON shape for a full answer.
type askAnswerJSON struct {
	Answer    string             `json:"answer"`
	Generated bool               `json:"generated"`
	Sources   []searchResultJSON `json:"sources"`
}

func outputAskJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := askAnswerJSON{
		Answer:    answer.Text,
		Generated: answer.Generated,
		Sources:   make([]searchResultJSON, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		out.Sources[i] = searchResultJSON{
			ChunkID:      src.Chunk.ID,
			DocumentID:   src.Document.ID,
			Conversation: src.Document.Name,
			Score:        src.Score,
			Content:      src.Chunk.Content,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
