// Package anthropic provides a generation service adapter using Anthropic API.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// Ensure GeneratorService implements the interface.
var _ driven.GeneratorService = (*GeneratorService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// defaultMaxTokens applies when the caller sets none; the API
	// requires max_tokens on every request.
	defaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic generation service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the generation model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	// Streaming requests ignore it; they run until ctx ends.
	Timeout time.Duration
}

// GeneratorService produces completions using Anthropic API.
type GeneratorService struct {
	client       *http.Client
	streamClient *http.Client
	baseURL      string
	apiKey       string
	model        string
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Stream      bool              `json:"stream,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// streamEvent is one SSE event payload in streaming mode. Only the
// content_block_delta and error events carry data the adapter needs.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGeneratorService creates a new Anthropic generation service.
func NewGeneratorService(cfg Config) (*GeneratorService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required: %w", domain.ErrInvalidInput)
	}
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
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
	}, nil
}

// newMessagesRequest builds a /v1/messages request. A leading system
// message moves into the dedicated system field; the API rejects it in
// the messages array.
func (s *GeneratorService) newMessagesRequest(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions, stream bool) (*http.Request, error) {
	var system string
	apiMessages := make([]messagesMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
			continue
		}
		apiMessages = append(apiMessages, messagesMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := messagesRequest{
		Model:       s.model,
		Messages:    apiMessages,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: opts.Temperature,
		Stream:      stream,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	return req, nil
}

// Chat conducts a conversation and returns the full completion.
func (s *GeneratorService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req, err := s.newMessagesRequest(ctx, messages, opts, false)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w: %w", domain.ErrGeneration, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w: %w", domain.ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w: %w", domain.ErrGeneration, err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w: %w", domain.ErrGeneration, err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic: %s: %w", msgResp.Error.Message, domain.ErrGeneration)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrGeneration)
	}

	var b strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// ChatStream conducts a conversation and streams the completion.
// Anthropic streams server-sent events; text arrives in
// content_block_delta events and the stream ends with message_stop.
func (s *GeneratorService) ChatStream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (<-chan string, <-chan error) {
	fragments := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(fragments)
		defer close(errs)

		req, err := s.newMessagesRequest(ctx, messages, opts, true)
		if err != nil {
			errs <- fmt.Errorf("anthropic: %w: %w", domain.ErrGeneration, err)
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := s.streamClient.Do(req)
		if err != nil {
			errs <- fmt.Errorf("anthropic: %w: %w", domain.ErrGeneration, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errs <- fmt.Errorf("anthropic: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrGeneration)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			var event streamEvent
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				errs <- fmt.Errorf("anthropic: decode stream: %w: %w", domain.ErrGeneration, err)
				return
			}

			switch event.Type {
			case "error":
				msg := "unknown error"
				if event.Error != nil {
					msg = event.Error.Message
				}
				errs <- fmt.Errorf("anthropic: %s: %w", msg, domain.ErrGeneration)
				return
			case "message_stop":
				return
			case "content_block_delta":
				if event.Delta.Text == "" {
					continue
				}
				select {
				case fragments <- event.Delta.Text:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}

		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("anthropic: read stream: %w: %w", domain.ErrGeneration, err)
		}
	}()

	return fragments, errs
}

// ModelName returns the name of the generation model being used.
func (s *GeneratorService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable with a minimal request.
// Anthropic has no listing endpoint that validates the key cheaply, so
// a one-token message is used.
func (s *GeneratorService) Ping(ctx context.Context) error {
	req, err := s.newMessagesRequest(ctx, []driven.ChatMessage{
		{Role: "user", Content: "ping"},
	}, driven.ChatOptions{MaxTokens: 1}, false)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: %w: %w", domain.ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("anthropic: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrGeneratorUnavailable)
	}
	return nil
}

// Close releases resources.
func (s *GeneratorService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
