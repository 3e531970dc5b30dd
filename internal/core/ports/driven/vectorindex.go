package driven

import "context"

// VectorIndex provides semantic similarity search operations.
// The default implementation is an exact brute-force cosine scan;
// approximate implementations may substitute behind the same contract,
// but the exact path remains the reference mode.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	// The first Add fixes the index dimension; later vectors of a
	// different length return domain.ErrDimensionMismatch.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Delete removes a vector from the index. Unknown IDs are a no-op.
	Delete(ctx context.Context, chunkID string) error

	// Search finds the k nearest neighbours to the query vector,
	// ordered by descending similarity. Equal scores order by ascending
	// chunk ID so results are reproducible. Returns min(k, Size())
	// hits, and domain.ErrEmptyStore when the index holds no vectors.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Size returns the number of indexed vectors.
	Size() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
