// Package inference talks to an OpenAI-compatible chat-completion endpoint,
// typically a local Ollama server.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"pagebrief/internal/domain"
)

// TransportError reports a failed round-trip to the inference endpoint.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("inference request to %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Config carries the endpoint coordinates. The API key is a placeholder that
// local backends accept without validating.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// Client is a configured handle to one chat-completion endpoint.
type Client struct {
	client  openai.Client
	baseURL string
	model   string
}

// New builds a client. Construction is local and performs no network I/O.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("model is required")
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}

	return &Client{
		client:  openai.NewClient(opts...),
		baseURL: baseURL,
		model:   model,
	}, nil
}

// Ping lists the endpoint's models to verify it is reachable before any page
// is fetched.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return &TransportError{Endpoint: c.baseURL, Err: fmt.Errorf("list models: %w", err)}
	}

	return nil
}

// Complete issues one blocking chat-completion request and returns the first
// choice's message content.
func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	params, err := c.completionParams(messages)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &TransportError{Endpoint: c.baseURL, Err: fmt.Errorf("do request: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", &TransportError{Endpoint: c.baseURL, Err: errors.New("chat completion choices are missing")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &TransportError{Endpoint: c.baseURL, Err: errors.New("chat completion choice message content is missing")}
	}

	return content, nil
}

func (c *Client) completionParams(messages []domain.Message) (openai.ChatCompletionNewParams, error) {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, message := range messages {
		switch message.Role {
		case domain.RoleSystem:
			converted = append(converted, openai.SystemMessage(message.Content))
		case domain.RoleUser:
			converted = append(converted, openai.UserMessage(message.Content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unsupported message role %q", message.Role)
		}
	}

	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: converted,
	}, nil
}
