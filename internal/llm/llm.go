// Package llm hides the model vendor behind the two calls the pipelines
// make: a JSON-object completion and a web-search-backed research prompt.
package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/pkg/anthropic"
	"github.com/sells-group/leadscout/pkg/openai"
	"github.com/sells-group/leadscout/pkg/perplexity"
)

// Client is a single-attempt LLM transport.
type Client interface {
	// CompleteJSON asks for a response that is one JSON object and returns
	// the raw text.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
	// Research runs prompt with web search enabled and returns the final
	// answer text.
	Research(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = eris.New("llm: empty response")

// New builds the Client for cfg.LLM.Provider.
func New(cfg *config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return NewOpenAI(openai.NewClient(cfg.OpenAI.Key, cfg.OpenAI.BaseURL), cfg.OpenAI, cfg.LLM), nil
	case "anthropic":
		return NewAnthropic(anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.BaseURL), cfg.Anthropic, cfg.LLM), nil
	case "perplexity":
		client := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
		return NewPerplexity(client, cfg.LLM), nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}
}
