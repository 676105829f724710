package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/pkg/openai"
)

// OpenAI uses chat completions in JSON-object mode for extraction and the
// Responses API with forced web_search_preview for research.
type OpenAI struct {
	client openai.Client
	cfg    config.OpenAIConfig
	llm    config.LLMConfig
}

// NewOpenAI creates an OpenAI-backed Client.
func NewOpenAI(client openai.Client, cfg config.OpenAIConfig, llmCfg config.LLMConfig) *OpenAI {
	return &OpenAI{client: client, cfg: cfg, llm: llmCfg}
}

// CompleteJSON implements Client.
func (o *OpenAI) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	temp := o.llm.Temperature
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatRequest{
		Model:       o.cfg.Model,
		System:      system,
		User:        user,
		Temperature: &temp,
		MaxTokens:   o.llm.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: openai complete")
	}
	resp.Usage.LogUsage(o.cfg.Model, "extract")
	if resp.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}

// Research implements Client.
func (o *OpenAI) Research(ctx context.Context, prompt string) (string, error) {
	res, err := o.client.CreateResponse(ctx, openai.ResponseRequest{
		Model:             o.cfg.ResearchModel,
		Input:             prompt,
		WebSearch:         true,
		SearchContextSize: o.cfg.SearchContextSize,
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: openai research")
	}
	res.Usage.LogUsage(o.cfg.ResearchModel, "research")
	return res.OutputText, nil
}
