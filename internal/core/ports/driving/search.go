package driving

import (
	"context"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// SearchService provides similarity search to external actors.
type SearchService interface {
	// Search embeds the query and returns the top-k most similar
	// chunks with their documents, ordered by descending score.
	// Returns domain.ErrEmptyStore when nothing has been ingested.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}
