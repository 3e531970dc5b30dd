package driving

import (
	"context"
	"time"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// ArchiveStats summarises the indexed archive.
type ArchiveStats struct {
	// Documents is the number of indexed conversations.
	Documents int

	// Messages is the total message count.
	Messages int

	// Chunks is the total chunk/vector record count.
	Chunks int

	// SpanStart is the earliest message timestamp across the archive.
	SpanStart time.Time

	// SpanEnd is the latest message timestamp across the archive.
	SpanEnd time.Time

	// Dimension is the embedding dimension, 0 when the store is empty.
	Dimension int

	// Model is the embedding model the store was built with.
	Model string
}

// DocumentService exposes indexed conversations to external actors.
type DocumentService interface {
	// List returns all indexed conversations, ordered by name.
	List(ctx context.Context) ([]domain.Document, error)

	// Get returns one conversation by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Stats summarises the archive.
	Stats(ctx context.Context) (*ArchiveStats, error)
}
