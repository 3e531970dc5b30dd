package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/adapters/driven/storage/memory"
	"github.com/chatlore/chatlore/internal/adapters/driven/vectorindex/bruteforce"
	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

func newAskFixture(t *testing.T, gen *stubGenerator) *AskService {
	t.Helper()
	store := memory.NewDocumentStore()
	index := bruteforce.New()
	seedArchive(t, store, index)

	search := NewSearchService(store, index, newStubEmbedding())
	return NewAskService(search, gen, stubPrompts{})
}

func TestAskGeneratesGroundedAnswer(t *testing.T) {
	gen := &stubGenerator{reply: "They planned a hike."}
	svc := newAskFixture(t, gen)

	answer, err := svc.Ask(context.Background(), "what did they plan?", driving.AskOptions{TopK: 2})
	require.NoError(t, err)

	assert.True(t, answer.Generated)
	assert.Equal(t, "They planned a hike.", answer.Text)
	assert.Len(t, answer.Sources, 2)

	messages := gen.lastMessages()
	require.NotEmpty(t, messages)
	assert.Equal(t, "system", messages[0].Role)

	last := messages[len(messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, "planning the hike")
	assert.Contains(t, last.Content, "Alice")
	assert.Contains(t, last.Content, "what did they plan?")
}

func TestAskStreamsFragments(t *testing.T) {
	gen := &stubGenerator{fragments: []string{"They ", "planned ", "a hike."}}
	svc := newAskFixture(t, gen)

	var streamed strings.Builder
	answer, err := svc.Ask(context.Background(), "what did they plan?", driving.AskOptions{
		OnFragment: func(f string) { streamed.WriteString(f) },
	})
	require.NoError(t, err)

	assert.True(t, answer.Generated)
	assert.Equal(t, "They planned a hike.", answer.Text)
	assert.Equal(t, "They planned a hike.", streamed.String())
}

func TestAskMidStreamFailureKeepsSources(t *testing.T) {
	gen := &stubGenerator{fragments: []string{"They "}, streamErr: errors.New("connection reset")}
	svc := newAskFixture(t, gen)

	answer, err := svc.Ask(context.Background(), "what did they plan?", driving.AskOptions{
		OnFragment: func(string) {},
	})
	require.Error(t, err)
	require.NotNil(t, answer)

	assert.False(t, answer.Generated)
	assert.Equal(t, "They ", answer.Text)
	assert.Len(t, answer.Sources, 2)
}

func TestAskNoGenerate(t *testing.T) {
	gen := &stubGenerator{reply: "should not be called"}
	svc := newAskFixture(t, gen)

	answer, err := svc.Ask(context.Background(), "plans?", driving.AskOptions{NoGenerate: true})
	require.NoError(t, err)

	assert.False(t, answer.Generated)
	assert.Contains(t, answer.Text, "Alice")
	assert.Len(t, answer.Sources, 2)
	assert.Empty(t, gen.lastMessages())
}

func TestAskNilGeneratorDegrades(t *testing.T) {
	store := memory.NewDocumentStore()
	index := bruteforce.New()
	seedArchive(t, store, index)
	svc := NewAskService(NewSearchService(store, index, newStubEmbedding()), nil, stubPrompts{})

	answer, err := svc.Ask(context.Background(), "plans?", driving.AskOptions{})
	require.NoError(t, err)
	assert.False(t, answer.Generated)
	assert.NotEmpty(t, answer.Text)
}

func TestAskHistoryCarriedIntoTranscript(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	svc := newAskFixture(t, gen)

	history := []domain.ChatTurn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	_, err := svc.Ask(context.Background(), "follow-up?", driving.AskOptions{History: history})
	require.NoError(t, err)

	messages := gen.lastMessages()
	require.Len(t, messages, 4)
	assert.Equal(t, "earlier question", messages[1].Content)
	assert.Equal(t, "assistant", messages[2].Role)
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newAskFixture(t, &stubGenerator{})

	_, err := svc.Ask(context.Background(), "  ", driving.AskOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskEmptyStorePropagates(t *testing.T) {
	search := NewSearchService(memory.NewDocumentStore(), bruteforce.New(), newStubEmbedding())
	svc := NewAskService(search, &stubGenerator{}, stubPrompts{})

	_, err := svc.Ask(context.Background(), "plans?", driving.AskOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyStore)
}
