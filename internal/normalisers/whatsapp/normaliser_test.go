package whatsapp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/core/domain"
)

func TestParseBasicExport(t *testing.T) {
	raw := []byte("12/03/2024, 09:15 - Alice: morning\n" +
		"12/03/2024, 09:16 - Bob: hey\n" +
		"and a second line\n" +
		"12/03/2024, 09:20 - Alice: bye\n")

	messages, stats := Parse(raw)
	require.Len(t, messages, 3)

	assert.Equal(t, "Alice", messages[0].Sender)
	assert.Equal(t, "morning", messages[0].Text)
	assert.Equal(t, time.Date(2024, 3, 12, 9, 15, 0, 0, time.UTC), messages[0].Timestamp)

	assert.Equal(t, "hey\nand a second line", messages[1].Text)

	assert.Equal(t, 3, stats.Recognised)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 0, stats.Preamble)
}

func TestParsePreambleDiscarded(t *testing.T) {
	raw := []byte("Messages and calls are end-to-end encrypted.\n" +
		"12/03/2024, 09:15 - Alice: hello\n")

	messages, stats := Parse(raw)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Text)
	assert.Equal(t, 1, stats.Preamble)
}

func TestParseDayFirstPreferred(t *testing.T) {
	// 5/4 is valid under both orderings; day-first wins.
	messages, _ := Parse([]byte("5/4/2024, 10:00 - Alice: hi\n"))
	require.Len(t, messages, 1)
	assert.Equal(t, time.April, messages[0].Timestamp.Month())
	assert.Equal(t, 5, messages[0].Timestamp.Day())
}

func TestParseMonthFirstFallback(t *testing.T) {
	// Day 25 rules out a month, so the month-first layouts apply.
	messages, _ := Parse([]byte("3/25/2024, 10:00 - Alice: hi\n"))
	require.Len(t, messages, 1)
	assert.Equal(t, time.March, messages[0].Timestamp.Month())
	assert.Equal(t, 25, messages[0].Timestamp.Day())
}

func TestParseTwelveHourClock(t *testing.T) {
	messages, _ := Parse([]byte("12/03/2024, 9:15 PM - Alice: evening\n"))
	require.Len(t, messages, 1)
	assert.Equal(t, 21, messages[0].Timestamp.Hour())

	messages, _ = Parse([]byte("12/03/2024, 9:15 p.m. - Alice: evening\n"))
	require.Len(t, messages, 1)
	assert.Equal(t, 21, messages[0].Timestamp.Hour())
}

func TestParseDroppedBoundaryDiscardsContinuations(t *testing.T) {
	raw := []byte("12/03/2024, 09:15 - Alice: first\n" +
		"99/99/2024, 09:16 - Bob: broken\n" +
		"continuation of broken\n" +
		"12/03/2024, 09:20 - Alice: last\n")

	messages, stats := Parse(raw)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "last", messages[1].Text)
	assert.Equal(t, 1, stats.Dropped)
}

func TestParseEmptyTextNotEmitted(t *testing.T) {
	raw := []byte("12/03/2024, 09:15 - Alice: \n" +
		"12/03/2024, 09:16 - Bob: real\n")

	messages, stats := Parse(raw)
	require.Len(t, messages, 1)
	assert.Equal(t, "Bob", messages[0].Sender)
	assert.Equal(t, 1, stats.Recognised)
}

func TestParseCRLFAndBOM(t *testing.T) {
	raw := []byte("\ufeff12/03/2024, 09:15 - Alice: hello\r\nsecond\r\n")

	messages, _ := Parse(raw)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello\nsecond", messages[0].Text)
}

func TestParseInvalidUTF8Replaced(t *testing.T) {
	raw := []byte("12/03/2024, 09:15 - Alice: hel\xfflo\n")

	messages, _ := Parse(raw)
	require.Len(t, messages, 1)
	assert.Equal(t, "hel�lo", messages[0].Text)
}

func TestNormaliseAssemblesDocument(t *testing.T) {
	n := New()
	raw := &domain.RawExport{
		URI:     "/exports/WhatsApp Chat with Alice.txt",
		Content: []byte("12/03/2024, 09:16 - Bob: second\n12/03/2024, 09:15 - Alice: first\n"),
	}

	result, err := n.Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Alice", result.Document.Name)
	assert.Equal(t, DocumentID("Alice"), result.Document.ID)
	require.Len(t, result.Document.Messages, 2)
	assert.Equal(t, "first", result.Document.Messages[0].Text)
	assert.Equal(t, "second", result.Document.Messages[1].Text)
}

func TestNormaliseEmptyExport(t *testing.T) {
	n := New()
	raw := &domain.RawExport{URI: "/exports/empty.txt", Content: []byte("just noise\n")}

	_, err := n.Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestDocumentIDStable(t *testing.T) {
	assert.Equal(t, DocumentID("Alice"), DocumentID("Alice"))
	assert.NotEqual(t, DocumentID("Alice"), DocumentID("Bob"))
}
