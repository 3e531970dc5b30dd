// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/chatlore/chatlore/internal/core/domain"
)

// AnswerCompleted carries a finished ask call back to the model.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// StatsLoaded carries the archive summary for the status bar.
type StatsLoaded struct {
	Conversations int
	Messages      int
	Err           error
}

// SessionCleared signals the history was discarded.
type SessionCleared struct{}
