// Package bruteforce provides an exact cosine similarity index.
//
// Vectors are L2-normalised on insert, so a search is a single dot
// product per stored vector. The scan is exact and deterministic:
// every query examines every vector, scores descend, and ties break by
// ascending chunk ID.
package bruteforce

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is one indexed vector. The stored vector is the normalised
// working copy, not the caller's slice.
type entry struct {
	chunkID string
	vector  []float32
}

// Index is an in-memory exact cosine similarity index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]entry
}

// New creates an empty index. The first Add fixes the dimension.
func New() *Index {
	return &Index{
		entries: make(map[string]entry),
	}
}

// Add inserts a vector for the given chunk ID, replacing any previous
// vector under the same ID.
func (idx *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" || len(embedding) == 0 {
		return domain.ErrInvalidInput
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dimension == 0 {
		idx.dimension = len(embedding)
	} else if len(embedding) != idx.dimension {
		return fmt.Errorf("vector for %s has %d dimensions, index has %d: %w",
			chunkID, len(embedding), idx.dimension, domain.ErrDimensionMismatch)
	}

	idx.entries[chunkID] = entry{chunkID: chunkID, vector: normalise(embedding)}
	return nil
}

// Delete removes a vector from the index. Unknown IDs are a no-op.
func (idx *Index) Delete(_ context.Context, chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, chunkID)
	return nil
}

// Search finds the k nearest neighbours to the query vector.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.entries) == 0 {
		return nil, domain.ErrEmptyStore
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w",
			len(query), idx.dimension, domain.ErrDimensionMismatch)
	}

	q := normalise(query)

	hits := make([]driven.VectorHit, 0, len(idx.entries))
	for _, e := range idx.entries {
		hits = append(hits, driven.VectorHit{
			ChunkID:    e.chunkID,
			Similarity: dot(q, e.vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Size returns the number of indexed vectors.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Close releases resources (no-op for the in-memory index).
func (idx *Index) Close() error {
	return nil
}

// normalise returns a unit-length copy of v. The zero vector is
// returned as a zero copy; it scores zero against everything.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}

	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dot computes the dot product in float64 for stable ordering.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
