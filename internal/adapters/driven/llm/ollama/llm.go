// Package ollama provides a generation service adapter using Ollama.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// Ensure GeneratorService implements the interface.
var _ driven.GeneratorService = (*GeneratorService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama generation service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the generation model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	// Streaming requests ignore it; they run until ctx ends.
	Timeout time.Duration
}

// GeneratorService produces completions using Ollama.
type GeneratorService struct {
	client       *http.Client
	streamClient *http.Client
	baseURL      string
	model        string
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// chatResponse is one Ollama /api/chat response object. In streaming
// mode the endpoint emits one JSON object per line.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewGeneratorService creates a new Ollama generation service.
func NewGeneratorService(cfg Config) *GeneratorService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GeneratorService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		streamClient: &http.Client{},
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
	}
}

func (s *GeneratorService) newChatRequest(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions, stream bool) (*http.Request, error) {
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := chatRequest{
		Model:    s.model,
		Messages: chatMessages,
		Stream:   stream,
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		reqBody.Options = &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/chat",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// Chat conducts a conversation and returns the full completion.
func (s *GeneratorService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req, err := s.newChatRequest(ctx, messages, opts, false)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %w", domain.ErrGeneration, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %w", domain.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrGeneration)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w: %w", domain.ErrGeneration, err)
	}
	if chatResp.Error != "" {
		return "", fmt.Errorf("ollama: %s: %w", chatResp.Error, domain.ErrGeneration)
	}

	return chatResp.Message.Content, nil
}

// ChatStream conducts a conversation and streams the completion.
// Ollama streams one JSON object per line until an object with done
// set to true.
func (s *GeneratorService) ChatStream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (<-chan string, <-chan error) {
	fragments := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(fragments)
		defer close(errs)

		req, err := s.newChatRequest(ctx, messages, opts, true)
		if err != nil {
			errs <- fmt.Errorf("ollama: %w: %w", domain.ErrGeneration, err)
			return
		}

		resp, err := s.streamClient.Do(req)
		if err != nil {
			errs <- fmt.Errorf("ollama: %w: %w", domain.ErrGeneration, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errs <- fmt.Errorf("ollama: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrGeneration)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chunk chatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				errs <- fmt.Errorf("ollama: decode stream: %w: %w", domain.ErrGeneration, err)
				return
			}
			if chunk.Error != "" {
				errs <- fmt.Errorf("ollama: %s: %w", chunk.Error, domain.ErrGeneration)
				return
			}

			if chunk.Message.Content != "" {
				select {
				case fragments <- chunk.Message.Content:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}

			if chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("ollama: read stream: %w: %w", domain.ErrGeneration, err)
		}
	}()

	return fragments, errs
}

// ModelName returns the name of the generation model being used.
func (s *GeneratorService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *GeneratorService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %w: %w", domain.ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrGeneratorUnavailable)
	}
	return nil
}

// Close releases resources.
func (s *GeneratorService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
