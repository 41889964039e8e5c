package llm

import (
	"context"
	"fmt"
	"strings"

	"ai-meal-shopper/internal/shared"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicModel     = "claude-3-5-haiku-latest"
	anthropicMaxTokens = 1024
)

// anthropicClient is a client for the Anthropic Messages API.
type anthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Anthropic API client.
func NewAnthropicClient(apiKey string) TextGenerator {
	client := anthropic.NewClient(anthropicoption.WithAPIKey(apiKey))
	return &anthropicClient{client: &client, model: anthropicModel}
}

// GenerateContent sends a prompt to the Anthropic model and returns the generated text.
func (c *anthropicClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: sb.String(),
		Usage: shared.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			Model:            c.model,
		},
	}, nil
}
