package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"the answer"},"done":true}`)
	}))
	defer srv.Close()

	svc := NewGeneratorService(Config{BaseURL: srv.URL})

	answer, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "question"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewGeneratorService(Config{BaseURL: srv.URL})

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"hel"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"lo"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	svc := NewGeneratorService(Config{BaseURL: srv.URL})

	fragments, errs := svc.ChatStream(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{})

	var b strings.Builder
	for f := range fragments {
		b.WriteString(f)
	}
	require.NoError(t, <-errs)
	assert.Equal(t, "hello", b.String())
}

func TestChatStreamMidStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"par"},"done":false}`)
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	}))
	defer srv.Close()

	svc := NewGeneratorService(Config{BaseURL: srv.URL})

	fragments, errs := svc.ChatStream(context.Background(), nil, driven.ChatOptions{})

	var got []string
	for f := range fragments {
		got = append(got, f)
	}
	err := <-errs
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, []string{"par"}, got)
}
