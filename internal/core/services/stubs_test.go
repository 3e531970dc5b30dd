package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// stubEmbedding returns canned vectors keyed by input text.
// Unknown inputs fall back to a fixed vector so tests never fail on
// incidental strings.
type stubEmbedding struct {
	dimension int
	vectors   map[string][]float32
	fallback  []float32
	pingErr   error
	embedErr  error

	mu     sync.Mutex
	embeds int
}

func newStubEmbedding() *stubEmbedding {
	return &stubEmbedding{
		dimension: 3,
		vectors:   make(map[string][]float32),
		fallback:  []float32{1, 0, 0},
	}
}

func (s *stubEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	s.embeds++
	s.mu.Unlock()

	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return s.fallback, nil
}

func (s *stubEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedding) Dimensions() int              { return s.dimension }
func (s *stubEmbedding) ModelName() string            { return "stub-embed" }
func (s *stubEmbedding) Ping(_ context.Context) error { return s.pingErr }
func (s *stubEmbedding) Close() error                 { return nil }

// stubGenerator replays a fixed completion, optionally as fragments.
type stubGenerator struct {
	reply     string
	fragments []string
	chatErr   error
	streamErr error

	mu       sync.Mutex
	messages []driven.ChatMessage
}

func (s *stubGenerator) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()

	if s.chatErr != nil {
		return "", s.chatErr
	}
	return s.reply, nil
}

func (s *stubGenerator) ChatStream(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (<-chan string, <-chan error) {
	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()

	fragments := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(fragments)
		defer close(errs)
		for _, f := range s.fragments {
			fragments <- f
		}
		if s.streamErr != nil {
			errs <- s.streamErr
		}
	}()
	return fragments, errs
}

func (s *stubGenerator) ModelName() string            { return "stub-llm" }
func (s *stubGenerator) Ping(_ context.Context) error { return nil }
func (s *stubGenerator) Close() error                 { return nil }

func (s *stubGenerator) lastMessages() []driven.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages
}

// stubPrompts serves fixed prompt templates.
type stubPrompts struct{}

func (stubPrompts) Load(name string) (string, error) {
	switch name {
	case driven.PromptAskSystem, driven.PromptChatSystem:
		return "You answer from the archive. (" + name + ")", nil
	default:
		return "", fmt.Errorf("unknown prompt %q", name)
	}
}

// stubSource serves in-memory exports. Scan errors are delivered with
// the blocking semantics real sources use.
type stubSource struct {
	exports  []domain.RawExport
	scanErrs []error
	watch    chan domain.RawExport
}

func (s *stubSource) Validate(_ context.Context) error { return nil }

func (s *stubSource) Scan(ctx context.Context) (<-chan domain.RawExport, <-chan error) {
	exports := make(chan domain.RawExport)
	errs := make(chan error, 1)
	go func() {
		defer close(exports)
		defer close(errs)
		for _, export := range s.exports {
			select {
			case exports <- export:
			case <-ctx.Done():
				return
			}
		}
		for _, err := range s.scanErrs {
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			}
		}
	}()
	return exports, errs
}

func (s *stubSource) Watch(_ context.Context) (<-chan domain.RawExport, error) {
	return s.watch, nil
}

func (s *stubSource) Close() error { return nil }
