package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient generates text through Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key required (api_key or GEMINI_API_KEY)")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	result, err := c.client.Models.GenerateContent(ctx,
		req.Model,
		genai.Text(req.User),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	resp := &Response{
		Content:  text,
		Model:    req.Model,
		Duration: time.Since(start),
	}
	if result.UsageMetadata != nil {
		resp.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}
