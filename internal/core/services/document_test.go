package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/adapters/driven/storage/memory"
	"github.com/chatlore/chatlore/internal/core/domain"
)

func TestDocumentListAndGet(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureMeta(ctx, 3, "stub-embed"))
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-b", "Bob"), nil))
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-a", "Alice"), nil))

	svc := NewDocumentService(store)

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Alice", docs[0].Name)
	assert.Equal(t, "Bob", docs[1].Name)

	doc, err := svc.Get(ctx, "doc-b")
	require.NoError(t, err)
	assert.Equal(t, "Bob", doc.Name)

	_, err = svc.Get(ctx, "doc-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStats(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureMeta(ctx, 3, "stub-embed"))

	early := testDocument("doc-a", "Alice")
	late := testDocument("doc-b", "Bob")
	late.SpanStart = late.SpanStart.Add(48 * time.Hour)
	late.SpanEnd = late.SpanEnd.Add(72 * time.Hour)

	chunks := []domain.Chunk{
		{ID: domain.ChunkID("doc-a", 0), DocumentID: "doc-a", Ordinal: 0, Content: "x", Embedding: []float32{1, 0, 0}},
	}
	require.NoError(t, store.SaveDocument(ctx, early, chunks))
	require.NoError(t, store.SaveDocument(ctx, late, nil))

	svc := NewDocumentService(store)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 2, stats.Messages)
	assert.Equal(t, 1, stats.Chunks)
	assert.Equal(t, early.SpanStart, stats.SpanStart)
	assert.Equal(t, late.SpanEnd, stats.SpanEnd)
	assert.Equal(t, 3, stats.Dimension)
	assert.Equal(t, "stub-embed", stats.Model)
}

func TestDocumentStatsEmptyArchive(t *testing.T) {
	svc := NewDocumentService(memory.NewDocumentStore())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Chunks)
	assert.True(t, stats.SpanStart.IsZero())
	assert.Zero(t, stats.Dimension)
	assert.Empty(t, stats.Model)
}
