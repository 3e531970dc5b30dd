package domain

import "fmt"

// Chunk represents a retrieval-sized slice of a document's canonical
// rendering, embeddable as one unit. Chunks never split a message-line
// except when a single message-line exceeds the configured chunk size,
// in which case that line becomes its own oversized chunk unmodified.
type Chunk struct {
	// ID is the stable chunk identifier, derived from the document ID
	// and the chunk ordinal. Ascending ID order within a document
	// matches conversation time order.
	ID string

	// DocumentID links back to the parent Document (non-owning).
	DocumentID string

	// Ordinal is the position of the chunk within the document.
	Ordinal int

	// Content is the chunk text: whole message-lines joined by newlines.
	Content string

	// Overlap is the number of leading bytes of Content duplicated
	// from the tail of the predecessor chunk, counting the separator
	// newline that follows the duplicated lines. Zero for the first
	// chunk and whenever no context was carried over. Removing the
	// first Overlap bytes of every chunk and joining the remainder
	// with newlines reconstructs the document rendering exactly.
	Overlap int

	// Embedding is the vector representation for semantic search.
	// Populated by the embedding gateway during ingestion.
	Embedding []float32
}

// ChunkID derives the stable identifier for a chunk of a document.
// The ordinal is zero-padded so lexicographic ID order equals ordinal
// order, which keeps similarity tie-breaking deterministic.
func ChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s#%04d", documentID, ordinal)
}
