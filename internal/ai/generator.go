package ai

import (
	"context"
	"fmt"
	"strings"
)

// Generator sends a single prompt to the configured model. The model name is
// fixed per Generator; one failed call is a failed call, no retries.
type Generator struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewGenerator(cfg ChatConfig) *Generator {
	return &Generator{
		client: NewOpenAICompatibleClient(),
		cfg:    cfg,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.BaseURL == "" || g.cfg.APIKey == "" || g.cfg.Model == "" {
		return "", fmt.Errorf("llm config is incomplete")
	}
	text, err := g.client.Complete(ctx, g.cfg, []ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty llm response")
	}
	return text, nil
}
