// Package search wraps the web search backends used to gather reference
// text for field extraction and the latest-news list.
package search

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/pkg/jina"
	"github.com/sells-group/leadscout/pkg/tavily"
)

// NoTitle is shown for news items the backend returned without a title.
const NoTitle = "No title"

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// NewsLink is a headline in the latest-news list.
type NewsLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SearchResult separates "the backend returned nothing" from "the call
// failed". Err is nil when the call succeeded, even with zero results.
type SearchResult struct {
	Results []Result
	Err     error
}

// Provider is a web search backend.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Service runs searches through a Provider.
type Service struct {
	provider Provider
}

// NewService creates a Service over provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// New builds a Service for the configured backend.
func New(cfg *config.Config) (*Service, error) {
	hc := &http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second}
	switch cfg.Search.Provider {
	case "tavily", "":
		client := tavily.NewClient(cfg.Tavily.Key,
			tavily.WithBaseURL(cfg.Tavily.BaseURL),
			tavily.WithSearchDepth(cfg.Tavily.SearchDepth),
			tavily.WithHTTPClient(hc),
		)
		return NewService(NewTavilyProvider(client)), nil
	case "jina":
		client := jina.NewClient(cfg.Jina.Key,
			jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
			jina.WithHTTPClient(hc),
		)
		return NewService(NewJinaProvider(client)), nil
	default:
		return nil, eris.Errorf("search: unknown provider %q", cfg.Search.Provider)
	}
}

// Query runs one search and keeps at most maxResults hits, in backend
// order. Entries are not filtered.
func (s *Service) Query(ctx context.Context, query string, maxResults int) SearchResult {
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return SearchResult{Err: eris.Wrapf(err, "search: query %q", query)}
	}
	if maxResults >= 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return SearchResult{Results: results}
}

// Search returns up to maxResults hits that carry both a URL and content.
// The cap applies before filtering, so fewer than maxResults may come
// back. Failures are logged and yield an empty list.
func (s *Service) Search(ctx context.Context, query string, maxResults int) []Result {
	res := s.Query(ctx, query, maxResults)
	if res.Err != nil {
		zap.L().Warn("search: request failed", zap.String("query", query), zap.Error(res.Err))
		return []Result{}
	}

	out := make([]Result, 0, len(res.Results))
	for _, r := range res.Results {
		if r.URL == "" || r.Content == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// LatestNews returns up to count headlines for the company. Failures are
// logged and yield an empty list.
func (s *Service) LatestNews(ctx context.Context, companyName string, count int) []NewsLink {
	query := companyName + " latest news"
	res := s.Query(ctx, query, count)
	if res.Err != nil {
		zap.L().Warn("search: news request failed", zap.String("company", companyName), zap.Error(res.Err))
		return []NewsLink{}
	}

	out := make([]NewsLink, 0, len(res.Results))
	for _, r := range res.Results {
		out = append(out, NewsLink{Title: TitleOrPlaceholder(r.Title), URL: r.URL})
	}
	return out
}

// TitleOrPlaceholder substitutes NoTitle for an empty title.
func TitleOrPlaceholder(title string) string {
	if title == "" {
		return NoTitle
	}
	return title
}
