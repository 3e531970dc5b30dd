package bruteforce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

func TestSearchRanksbyCosine(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1}))
	require.NoError(t, idx.Add(ctx, "c", []float32{1, 1}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "a", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "c", hits[1].ChunkID)
	assert.Equal(t, "b", hits[2].ChunkID)
}

func TestSearchScaleInvariant(t *testing.T) {
	idx := New()
	ctx := context.Background()

	// Same direction, different magnitudes: identical similarity.
	require.NoError(t, idx.Add(ctx, "small", []float32{0.001, 0.002}))
	require.NoError(t, idx.Add(ctx, "large", []float32{1000, 2000}))

	hits, err := idx.Search(ctx, []float32{1, 2}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.InDelta(t, hits[0].Similarity, hits[1].Similarity, 1e-6)
}

func TestSearchTieBreaksByChunkID(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "z", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "m", []float32{1, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, "a", hits[0].ChunkID)
	assert.Equal(t, "m", hits[1].ChunkID)
	assert.Equal(t, "z", hits[2].ChunkID)
}

func TestSearchReturnsMinKSize(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := New()

	_, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrEmptyStore)
}

func TestAddDimensionMismatch(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))
	assert.ErrorIs(t, idx.Add(ctx, "b", []float32{1, 0}), domain.ErrDimensionMismatch)

	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestAddReplacesExisting(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{0, 1}))
	assert.Equal(t, 1, idx.Size())

	hits, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Delete(ctx, "missing"))
	require.NoError(t, idx.Delete(ctx, "a"))
	assert.Zero(t, idx.Size())
}

func TestSearchDeterministic(t *testing.T) {
	idx := New()
	ctx := context.Background()

	vectors := map[string][]float32{
		"a": {0.9, 0.1, 0.3},
		"b": {0.2, 0.8, 0.1},
		"c": {0.5, 0.5, 0.5},
		"d": {0.1, 0.2, 0.9},
	}
	for id, v := range vectors {
		require.NoError(t, idx.Add(ctx, id, v))
	}

	var prev []driven.VectorHit
	for range 5 {
		hits, err := idx.Search(ctx, []float32{0.7, 0.2, 0.4}, 4)
		require.NoError(t, err)
		if prev != nil {
			assert.Equal(t, prev, hits)
		}
		prev = hits
	}
}
