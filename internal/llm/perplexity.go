package llm

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/pkg/perplexity"
)

// Perplexity uses sonar chat completions. Extraction runs with search
// disabled so the answer is grounded on the supplied reference text.
type Perplexity struct {
	client perplexity.Client
	llm    config.LLMConfig
}

// NewPerplexity creates a Perplexity-backed Client.
func NewPerplexity(client perplexity.Client, llmCfg config.LLMConfig) *Perplexity {
	return &Perplexity{client: client, llm: llmCfg}
}

// CompleteJSON implements Client.
func (p *Perplexity) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	temp := p.llm.Temperature
	req := perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: system + "\n" + jsonOnly},
			{Role: "user", Content: user},
		},
		Temperature:   &temp,
		DisableSearch: true,
	}
	if p.llm.MaxTokens > 0 {
		maxTokens := p.llm.MaxTokens
		req.MaxTokens = &maxTokens
	}

	resp, err := p.client.ChatCompletion(ctx, req)
	if err != nil {
		warnThrottled("complete", err)
		return "", eris.Wrap(err, "llm: perplexity complete")
	}
	text := resp.Content()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Research implements Client.
func (p *Perplexity) Research(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages:         []perplexity.Message{{Role: "user", Content: prompt}},
		WebSearchOptions: &perplexity.WebSearchOptions{SearchContextSize: "medium"},
	})
	if err != nil {
		warnThrottled("research", err)
		return "", eris.Wrap(err, "llm: perplexity research")
	}
	zap.L().Debug("llm: perplexity research citations", zap.Strings("citations", resp.Citations))
	return resp.Content(), nil
}

// warnThrottled logs 429 replies from the API.
func warnThrottled(op string, err error) {
	var apiErr *perplexity.APIError
	if errors.As(err, &apiErr) && apiErr.RateLimited() {
		zap.L().Warn("llm: perplexity rate limited",
			zap.String("op", op), zap.Int("status", apiErr.StatusCode))
	}
}
