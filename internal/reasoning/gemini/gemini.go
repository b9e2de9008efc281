// Package gemini adapts github.com/google/generative-ai-go/genai into
// the reasoning.Generator contract.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator calls a Gemini text model for a single-turn completion.
type Generator struct {
	client *genai.Client
	model  string
}

// New builds a Generator against apiKey. model defaults to
// gemini-1.5-flash when empty.
func New(ctx context.Context, apiKey, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("reasoning/gemini: new client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Generator{client: client, model: model}, nil
}

// Close releases the underlying client.
func (g *Generator) Close() error { return g.client.Close() }

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	maxTokens := int32(40)
	model.MaxOutputTokens = &maxTokens

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("reasoning/gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	if text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(text), nil
	}
	return "", nil
}
