package driving

import (
	"context"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// AskOptions configures a single ask call.
type AskOptions struct {
	// TopK is the number of chunks to retrieve (default 5).
	TopK int

	// History holds the prior turns of the session, oldest first.
	// The coordinator never persists it; carrying state across calls
	// is the caller's responsibility.
	History []domain.ChatTurn

	// NoGenerate forces retrieval-only mode even when a generator is
	// configured.
	NoGenerate bool

	// OnFragment, when set, receives answer fragments as the generator
	// streams them. The full answer is still accumulated into the
	// returned Answer.
	OnFragment func(fragment string)
}

// AskService coordinates retrieval and grounded answer generation.
type AskService interface {
	// Ask embeds the query, retrieves the top-k chunks, and produces a
	// grounded answer. Sources are always returned, even when
	// generation is skipped or fails mid-stream. Cancelling ctx aborts
	// the generation stream and any pending embedding call.
	Ask(ctx context.Context, query string, opts AskOptions) (*domain.Answer, error)
}
