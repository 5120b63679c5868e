// Package llm provides a pluggable chat-completion interface and its providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rcliao/scratchpad/internal/config"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty completion response")

// Request is one stateless chat turn: a system instruction plus user content.
type Request struct {
	Model  string
	System string
	User   string
}

// Response is the generated text with usage data when the provider reports it.
type Response struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

// Completer generates text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (*Response, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// New builds the provider named in cfg. Retries are left to the caller (see WithRetry).
// Environment fallbacks:
// OLLAMA_HOST for ollama, OPENAI_API_KEY and OPENAI_BASE_URL for openai,
// ANTHROPIC_API_KEY for anthropic, GEMINI_API_KEY (or GOOGLE_API_KEY) for gemini.
func New(ctx context.Context, cfg config.SummarizeConfig) (Completer, error) {
	var c Completer
	switch cfg.Provider {
	case "ollama", "":
		c = NewOllamaClient(firstNonEmpty(cfg.BaseURL, os.Getenv("OLLAMA_HOST")), cfg.Timeout)
	case "openai":
		c = NewOpenAIClient(
			firstNonEmpty(cfg.BaseURL, os.Getenv("OPENAI_BASE_URL")),
			firstNonEmpty(cfg.APIKey, os.Getenv("OPENAI_API_KEY")),
			cfg.Timeout)
	case "anthropic":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("anthropic API key required (api_key or ANTHROPIC_API_KEY)")
		}
		c = NewAnthropicClient(cfg.BaseURL, key, cfg.Timeout)
	case "gemini":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
		g, err := NewGeminiClient(ctx, key)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
	return c, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
