package domain

import "time"

// Message represents a single chat message recognised in an export.
// It is the atomic unit of a conversation; continuation lines are folded
// into the owning message's Text with embedded newlines.
type Message struct {
	// Timestamp is when the message was sent. Source order is not
	// guaranteed to be monotonic; sorting is the assembler's job.
	Timestamp time.Time

	// Sender is the display name of the message author.
	Sender string

	// Text is the message body. Never empty after trimming.
	Text string
}
