package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAssembleDocument_SortsByTimestamp(t *testing.T) {
	msgs := []Message{
		{Timestamp: ts("2024-03-02 09:15"), Sender: "bob", Text: "late"},
		{Timestamp: ts("2024-03-01 08:00"), Sender: "alice", Text: "early"},
		{Timestamp: ts("2024-03-01 21:30"), Sender: "bob", Text: "middle"},
	}

	doc, err := AssembleDocument("doc-1", "Trip planning", "/exports/trip.txt", msgs)
	require.NoError(t, err)

	assert.Equal(t, "early", doc.Messages[0].Text)
	assert.Equal(t, "middle", doc.Messages[1].Text)
	assert.Equal(t, "late", doc.Messages[2].Text)
	assert.Equal(t, 3, doc.MessageCount)
	assert.Equal(t, ts("2024-03-01 08:00"), doc.SpanStart)
	assert.Equal(t, ts("2024-03-02 09:15"), doc.SpanEnd)
	assert.True(t, doc.SpanEnd.Sub(doc.SpanStart) >= 24*time.Hour)
}

func TestAssembleDocument_StableOnTies(t *testing.T) {
	same := ts("2024-03-01 10:00")
	msgs := []Message{
		{Timestamp: same, Sender: "alice", Text: "first in file"},
		{Timestamp: same, Sender: "bob", Text: "second in file"},
		{Timestamp: same, Sender: "carol", Text: "third in file"},
	}

	doc, err := AssembleDocument("doc-1", "ties", "/exports/ties.txt", msgs)
	require.NoError(t, err)

	assert.Equal(t, "first in file", doc.Messages[0].Text)
	assert.Equal(t, "second in file", doc.Messages[1].Text)
	assert.Equal(t, "third in file", doc.Messages[2].Text)
}

func TestAssembleDocument_DoesNotMutateInput(t *testing.T) {
	msgs := []Message{
		{Timestamp: ts("2024-03-02 09:15"), Sender: "bob", Text: "late"},
		{Timestamp: ts("2024-03-01 08:00"), Sender: "alice", Text: "early"},
	}

	_, err := AssembleDocument("doc-1", "n", "/e.txt", msgs)
	require.NoError(t, err)

	assert.Equal(t, "late", msgs[0].Text, "input slice should keep file order")
}

func TestAssembleDocument_Empty(t *testing.T) {
	_, err := AssembleDocument("doc-1", "empty", "/exports/empty.txt", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyDocument))
}

func TestDocument_Rendering(t *testing.T) {
	msgs := []Message{
		{Timestamp: ts("2024-03-01 08:00"), Sender: "alice", Text: "hello"},
		{Timestamp: ts("2024-03-01 08:05"), Sender: "bob", Text: "multi\nline reply"},
	}

	doc, err := AssembleDocument("doc-1", "r", "/r.txt", msgs)
	require.NoError(t, err)

	want := "[2024-03-01 08:00] alice: hello\n[2024-03-01 08:05] bob: multi\nline reply"
	assert.Equal(t, want, doc.Rendering())
}

func TestChunkID_Ordering(t *testing.T) {
	// Zero padding keeps lexicographic order equal to ordinal order.
	assert.Equal(t, "doc-1#0000", ChunkID("doc-1", 0))
	assert.Equal(t, "doc-1#0012", ChunkID("doc-1", 12))
	assert.Less(t, ChunkID("doc-1", 2), ChunkID("doc-1", 10))
}
