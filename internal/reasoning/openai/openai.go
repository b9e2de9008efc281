// Package openai adapts github.com/sashabaranov/go-openai into the
// reasoning.Generator contract.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Generator calls the chat-completions endpoint for a single-turn
// completion. There is no retry here — reasoning.Enrich treats any error
// as "no enrichment" and the planner never blocks on it.
type Generator struct {
	client *openai.Client
	model  string
}

// New builds a Generator. model defaults to gpt-4o-mini when empty.
func New(apiKey, model string) *Generator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Generator{client: openai.NewClient(apiKey), model: model}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: 60,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Add one short, friendly clause to a meal-plan assignment note. Reply with only the clause, no punctuation leading it."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("reasoning/openai: generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
