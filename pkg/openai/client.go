// Package openai wraps the OpenAI chat completions API (JSON-object mode)
// and the Responses API with the hosted web search tool.
package openai

import (
	"context"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client defines the OpenAI API operations we use.
type Client interface {
	// CreateChatCompletion runs a chat completion. JSON forces a JSON object
	// response.
	CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// CreateResponse runs a Responses API call, optionally forcing the
	// web_search_preview tool, and returns the aggregated output text.
	CreateResponse(ctx context.Context, req ResponseRequest) (*ResponseResult, error)
}

// ChatRequest is our own request type for CreateChatCompletion.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature *float64
	MaxTokens   int64
	JSON        bool
}

// ChatResponse is the first choice of a chat completion.
type ChatResponse struct {
	ID      string
	Content string
	Usage   Usage
}

// ResponseRequest is our own request type for CreateResponse.
type ResponseRequest struct {
	Model     string
	Input     string
	WebSearch bool
	// SearchContextSize is "low", "medium" or "high".
	SearchContextSize string
}

// ResponseResult carries the text output of a Responses API call.
type ResponseResult struct {
	ID         string
	OutputText string
	Usage      Usage
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// LogUsage logs token usage with structured zap fields.
func (u Usage) LogUsage(model, phase string) {
	zap.L().Info("token usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("prompt_tokens", u.PromptTokens),
		zap.Int64("completion_tokens", u.CompletionTokens),
	)
}

type sdkClient struct {
	client sdk.Client
}

// NewClient creates an OpenAI client backed by the official SDK. baseURL
// may be empty. Calls are made once; the SDK's automatic retries are off.
func NewClient(apiKey, baseURL string) Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &sdkClient{client: sdk.NewClient(opts...)}
}

func (c *sdkClient) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var msgs []sdk.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, sdk.SystemMessage(req.System))
	}
	msgs = append(msgs, sdk.UserMessage(req.User))

	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(req.Model),
		Messages: msgs,
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(req.MaxTokens)
	}
	if req.JSON {
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "openai: chat completion")
	}
	if len(completion.Choices) == 0 {
		return nil, eris.New("openai: chat completion returned no choices")
	}

	return &ChatResponse{
		ID:      completion.ID,
		Content: completion.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
		},
	}, nil
}

func (c *sdkClient) CreateResponse(ctx context.Context, req ResponseRequest) (*ResponseResult, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(req.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: sdk.String(req.Input),
		},
	}
	if req.WebSearch {
		tool := &responses.WebSearchPreviewToolParam{
			Type: responses.WebSearchPreviewToolTypeWebSearchPreview,
		}
		if req.SearchContextSize != "" {
			tool.SearchContextSize = responses.WebSearchPreviewToolSearchContextSize(req.SearchContextSize)
		}
		params.Tools = []responses.ToolUnionParam{{OfWebSearchPreview: tool}}
		params.ToolChoice = responses.ResponseNewParamsToolChoiceUnion{
			OfHostedTool: &responses.ToolChoiceTypesParam{
				Type: responses.ToolChoiceTypesTypeWebSearchPreview,
			},
		}
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create response")
	}

	return &ResponseResult{
		ID:         resp.ID,
		OutputText: resp.OutputText(),
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
