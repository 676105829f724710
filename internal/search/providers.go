package search

import (
	"context"

	"github.com/sells-group/leadscout/pkg/jina"
	"github.com/sells-group/leadscout/pkg/tavily"
)

// TavilyProvider searches through the Tavily API.
type TavilyProvider struct {
	client tavily.Client
}

// NewTavilyProvider wraps a Tavily client.
func NewTavilyProvider(client tavily.Client) *TavilyProvider {
	return &TavilyProvider{client: client}
}

// Search implements Provider.
func (p *TavilyProvider) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := p.client.Search(ctx, tavily.SearchRequest{Query: query})
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return out, nil
}

// JinaProvider searches through Jina AI.
type JinaProvider struct {
	client jina.Client
}

// NewJinaProvider wraps a Jina client.
func NewJinaProvider(client jina.Client) *JinaProvider {
	return &JinaProvider{client: client}
}

// Search implements Provider.
func (p *JinaProvider) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := p.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(resp.Data))
	for _, r := range resp.Data {
		out = append(out, Result{Title: r.Title, URL: r.URL, Content: r.Text()})
	}
	return out, nil
}
