package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/pkg/anthropic"
)

// jsonOnly is appended to the system prompt; the Messages API has no
// JSON-object response mode.
const jsonOnly = "Respond with a single JSON object and nothing else."

// Anthropic uses the Messages API, with the web_search tool for research.
type Anthropic struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
	llm    config.LLMConfig
}

// NewAnthropic creates an Anthropic-backed Client.
func NewAnthropic(client anthropic.Client, cfg config.AnthropicConfig, llmCfg config.LLMConfig) *Anthropic {
	return &Anthropic{client: client, cfg: cfg, llm: llmCfg}
}

// CompleteJSON implements Client.
func (a *Anthropic) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	sys := jsonOnly
	if system != "" {
		sys = system + "\n" + jsonOnly
	}
	temp := a.llm.Temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.llm.MaxTokens,
		System:      sys,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic complete")
	}
	resp.Usage.LogCost(a.cfg.Model, "extract")

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Research implements Client.
func (a *Anthropic) Research(ctx context.Context, prompt string) (string, error) {
	maxTokens := a.cfg.ResearchTokens
	if maxTokens <= 0 {
		maxTokens = a.llm.MaxTokens
	}
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.cfg.Model,
		MaxTokens: maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		WebSearch: &anthropic.WebSearch{MaxUses: a.cfg.WebSearchUses},
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic research")
	}
	resp.Usage.LogCost(a.cfg.Model, "research")
	return resp.Text(), nil
}
