// Package llm holds the model-backed parts of plan generation: slot
// selection, City DNA and the local guide. Every capability has a
// deterministic fallback so a missing or failing model never fails a plan.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ChatClient abstracts the text generation this package needs from a model.
type ChatClient interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
	Model() string
}

// GeminiChatClient is the production ChatClient backed by Gemini.
type GeminiChatClient struct {
	client *genai.Client
	model  string
}

// NewGeminiChatClient dials the Gemini API. Callers treat a nil ChatClient
// as "model disabled" and run on fallbacks only.
func NewGeminiChatClient(ctx context.Context, apiKey, model string) (*GeminiChatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiChatClient{client: client, model: model}, nil
}

func (g *GeminiChatClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("generate content: empty response")
	}
	return sb.String(), nil
}

func (g *GeminiChatClient) Model() string {
	return g.model
}

// stripJSONFences removes the markdown code fences some models wrap around
// JSON output.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
