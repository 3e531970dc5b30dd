package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderTimeLayout is the timestamp layout used in the canonical rendering.
const RenderTimeLayout = "2006-01-02 15:04"

// Document represents one assembled conversation.
// It is immutable once assembled; re-ingesting the same export
// replaces the document wholesale.
type Document struct {
	// ID is the unique identifier, derived from the export name.
	ID string

	// Name is the human-readable conversation name.
	Name string

	// URI is the original export location (file path).
	URI string

	// Messages are the conversation messages, sorted ascending by
	// timestamp. The sort is stable: ties keep original file order.
	Messages []Message

	// SpanStart is the timestamp of the earliest message.
	SpanStart time.Time

	// SpanEnd is the timestamp of the latest message.
	SpanEnd time.Time

	// MessageCount equals len(Messages).
	MessageCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// AssembleDocument builds a Document from parsed messages.
// Messages are stably sorted by timestamp ascending, so messages with
// equal timestamps keep their original file order.
// Returns ErrEmptyDocument when messages is empty.
func AssembleDocument(id, name, uri string, messages []Message) (*Document, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("assemble %q: %w", id, ErrEmptyDocument)
	}

	sorted := make([]Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	return &Document{
		ID:           id,
		Name:         name,
		URI:          uri,
		Messages:     sorted,
		SpanStart:    sorted[0].Timestamp,
		SpanEnd:      sorted[len(sorted)-1].Timestamp,
		MessageCount: len(sorted),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Rendering produces the canonical line rendering of the document:
// one line per message, formatted as "[timestamp] sender: text".
// Multi-line message text is preserved with embedded newlines, so a
// rendered message may span several physical lines but is always a
// single logical message-line for chunking purposes.
func (d *Document) Rendering() string {
	var b strings.Builder
	for i := range d.Messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(RenderMessage(&d.Messages[i]))
	}
	return b.String()
}

// RenderMessage formats a single message in the canonical form.
func RenderMessage(m *Message) string {
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format(RenderTimeLayout), m.Sender, m.Text)
}
