package driven

import (
	"context"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// StoreMeta describes a persisted store's fixed properties.
// Dimension and model are set when the first document is ingested and
// never change for the life of the store.
type StoreMeta struct {
	// FormatVersion is the on-disk schema version.
	FormatVersion int

	// Dimension is the embedding vector size for every record.
	Dimension int

	// Model is the embedding model the vectors came from.
	Model string
}

// DocumentStore persists documents together with their chunks and
// embeddings. Backed by SQLite.
//
// SaveDocument is the store's single transactional unit: a document,
// its chunks, and their vectors land together or not at all, and an
// existing document with the same ID is replaced wholesale in the same
// transaction. Reopening a store never requires re-embedding.
type DocumentStore interface {
	// EnsureMeta records dimension and model on first use, and
	// validates them on every later call. A differing dimension returns
	// domain.ErrDimensionMismatch; the store is left untouched.
	EnsureMeta(ctx context.Context, dimension int, model string) error

	// Meta returns the store's metadata, or domain.ErrNotFound when no
	// document has ever been ingested.
	Meta(ctx context.Context) (*StoreMeta, error)

	// SaveDocument atomically stores a document and its chunks,
	// replacing any previous version of the document. Every chunk
	// embedding must match the store dimension
	// (domain.ErrDimensionMismatch otherwise, nothing written).
	SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, ordered by name.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document, in ordinal order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ForEachChunk streams every chunk in the store, in ascending chunk
	// ID order. Used to rebuild the vector index on open. Records whose
	// embeddings violate the store dimension surface
	// domain.ErrCorruptStore.
	ForEachChunk(ctx context.Context, fn func(domain.Chunk) error) error

	// CountChunks returns the number of chunk records.
	CountChunks(ctx context.Context) (int, error)

	// Close releases the underlying database handle.
	Close() error
}
