package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
	"github.com/chatlore/chatlore/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// Generation defaults. Conservative temperature keeps answers anchored
// to the excerpts instead of the model's imagination.
const (
	askMaxTokens   = 1024
	askTemperature = 0.2
)

// AskService coordinates retrieval and grounded answer generation.
// The generator is optional; without one every ask runs in
// retrieval-only mode and returns a digest of the top sources.
type AskService struct {
	search    driving.SearchService
	generator driven.GeneratorService
	prompts   driven.PromptStore
}

// NewAskService creates a new ask coordinator.
// generator may be nil, which forces retrieval-only mode.
func NewAskService(
	search driving.SearchService,
	generator driven.GeneratorService,
	prompts driven.PromptStore,
) *AskService {
	return &AskService{
		search:    search,
		generator: generator,
		prompts:   prompts,
	}
}

// Ask embeds the query, retrieves the top-k chunks, and produces a
// grounded answer. When generation fails mid-stream the partial text
// and the sources are still returned alongside the error.
func (s *AskService) Ask(ctx context.Context, query string, opts driving.AskOptions) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}

	logger.Section("Ask Coordination")

	sources, err := s.search.Search(ctx, query, opts.TopK)
	if err != nil {
		return nil, err
	}
	logger.Debug("Retrieved %d sources for %q", len(sources), query)

	if opts.NoGenerate || s.generator == nil {
		logger.Debug("Retrieval-only mode (generator configured: %t)", s.generator != nil)
		return &domain.Answer{
			Text:      retrievalDigest(sources),
			Sources:   sources,
			Generated: false,
		}, nil
	}

	messages, err := s.buildMessages(query, sources, opts.History)
	if err != nil {
		return nil, err
	}

	chatOpts := driven.ChatOptions{
		MaxTokens:   askMaxTokens,
		Temperature: askTemperature,
	}

	var text string
	if opts.OnFragment != nil {
		text, err = s.chatStreaming(ctx, messages, chatOpts, opts.OnFragment)
	} else {
		text, err = s.generator.Chat(ctx, messages, chatOpts)
	}
	if err != nil {
		// Generation failed after retrieval succeeded. The caller still
		// gets the sources and whatever text arrived before the failure.
		return &domain.Answer{
			Text:      text,
			Sources:   sources,
			Generated: false,
		}, fmt.Errorf("generating answer: %w", err)
	}

	return &domain.Answer{
		Text:      strings.TrimSpace(text),
		Sources:   sources,
		Generated: true,
	}, nil
}

// chatStreaming drains the generator stream, forwarding each fragment
// and accumulating the full answer.
func (s *AskService) chatStreaming(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions, onFragment func(string)) (string, error) {
	fragments, errs := s.generator.ChatStream(ctx, messages, opts)

	var b strings.Builder
	for fragment := range fragments {
		b.WriteString(fragment)
		onFragment(fragment)
	}
	if err := <-errs; err != nil {
		return b.String(), err
	}
	return b.String(), nil
}

// buildMessages assembles the chat transcript sent to the generator:
// system prompt, prior turns, then the excerpts and the question as the
// final user message.
func (s *AskService) buildMessages(query string, sources []domain.SearchResult, history []domain.ChatTurn) ([]driven.ChatMessage, error) {
	promptName := driven.PromptAskSystem
	if len(history) > 0 {
		promptName = driven.PromptChatSystem
	}
	system, err := s.prompts.Load(promptName)
	if err != nil {
		return nil, fmt.Errorf("loading system prompt: %w", err)
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: system})
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	var b strings.Builder
	if len(sources) > 0 {
		b.WriteString("Excerpts from the chat archive:\n\n")
		for i, src := range sources {
			fmt.Fprintf(&b, "--- Excerpt %d: %s (%s to %s) ---\n%s\n\n",
				i+1,
				src.Document.Name,
				src.Document.SpanStart.Format(domain.RenderTimeLayout),
				src.Document.SpanEnd.Format(domain.RenderTimeLayout),
				src.Chunk.Content,
			)
		}
	} else {
		b.WriteString("No relevant excerpts were found in the archive.\n\n")
	}
	fmt.Fprintf(&b, "Question: %s", query)

	messages = append(messages, driven.ChatMessage{Role: "user", Content: b.String()})
	return messages, nil
}

// retrievalDigest renders the retrieval-only answer: the top sources,
// labelled by conversation, with their text trimmed to a preview.
func retrievalDigest(sources []domain.SearchResult) string {
	if len(sources) == 0 {
		return "No relevant excerpts found in the archive."
	}

	var b strings.Builder
	b.WriteString("Most relevant excerpts:\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "\n%d. %s (score %.3f)\n%s\n",
			i+1, src.Document.Name, src.Score, previewText(src.Chunk.Content, 400))
	}
	return strings.TrimRight(b.String(), "\n")
}

// previewText truncates long chunk content on a rune boundary.
func previewText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
