// Package llm is the OpenRouter-compatible chat completions client.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/furydoc/cybersyn/internal/research"
	"github.com/furydoc/cybersyn/internal/telemetry"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "anthropic/claude-3.5-sonnet"

	defaultTimeout = 120 * time.Second
)

// Options configure a Client.
type Options struct {
	APIKey  string
	BaseURL string
	// SystemPrompt, when set, is prepended to every conversation.
	SystemPrompt string
	Timeout      time.Duration
	// Referer and Title fill the attribution headers OpenRouter uses for
	// ranking; both optional.
	Referer string
	Title   string
}

// Client talks to an OpenRouter-style chat completions endpoint. It
// implements research.Generator.
type Client struct {
	opts   Options
	client *http.Client
	logger *log.Logger
}

// New validates options and builds a client. The API key is required;
// everything else has a default.
func New(opts Options, logger *log.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key is not configured")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[LLM] ", log.LstdFlags)
	}
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one conversation and returns the first choice. The
// configured system prompt is prepended; incoming system messages are
// dropped so callers cannot override it.
func (c *Client) Complete(ctx context.Context, msgs []research.Message, opts research.GenOptions) (string, error) {
	start := time.Now()
	content, err := c.complete(ctx, msgs, opts)
	telemetry.GenerationsTotal.WithLabelValues(telemetry.Outcome(err)).Inc()
	telemetry.GenerationDuration.Observe(time.Since(start).Seconds())
	return content, err
}

func (c *Client) complete(ctx context.Context, msgs []research.Message, opts research.GenOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	conversation := make([]chatMessage, 0, len(msgs)+1)
	if c.opts.SystemPrompt != "" {
		conversation = append(conversation, chatMessage{Role: research.RoleSystem, Content: c.opts.SystemPrompt})
	}
	for _, m := range msgs {
		if m.Role == research.RoleSystem {
			continue
		}
		conversation = append(conversation, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    conversation,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	if c.opts.Referer != "" {
		req.Header.Set("HTTP-Referer", c.opts.Referer)
	}
	if c.opts.Title != "" {
		req.Header.Set("X-Title", c.opts.Title)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("completions status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	c.logger.Printf("model=%s prompt_tokens=%d completion_tokens=%d", model, out.Usage.PromptTokens, out.Usage.CompletionTokens)
	return out.Choices[0].Message.Content, nil
}
