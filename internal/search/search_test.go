package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/config"
)

type stubProvider struct {
	results []Result
	err     error
	queries []string
}

func (s *stubProvider) Search(_ context.Context, query string) ([]Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func TestSearch_TruncatesThenFilters(t *testing.T) {
	p := &stubProvider{results: []Result{
		{Title: "a", URL: "https://a.test", Content: "alpha"},
		{Title: "b", URL: "", Content: "no url"},
		{Title: "c", URL: "https://c.test", Content: ""},
		{Title: "d", URL: "https://d.test", Content: "delta"},
	}}

	got := NewService(p).Search(context.Background(), "Acme CEO", 3)

	// Only "a" survives: "d" was cut by the cap before filtering.
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.test", got[0].URL)
	assert.Equal(t, []string{"Acme CEO"}, p.queries)
}

func TestSearch_FailOpen(t *testing.T) {
	p := &stubProvider{err: errors.New("tavily: unexpected status 500")}

	got := NewService(p).Search(context.Background(), "Acme CEO", 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQuery_DistinguishesFailureFromEmpty(t *testing.T) {
	failed := NewService(&stubProvider{err: errors.New("boom")}).Query(context.Background(), "q", 3)
	require.Error(t, failed.Err)
	assert.Contains(t, failed.Err.Error(), `search: query "q"`)

	empty := NewService(&stubProvider{}).Query(context.Background(), "q", 3)
	assert.NoError(t, empty.Err)
	assert.Empty(t, empty.Results)
}

func TestLatestNews(t *testing.T) {
	p := &stubProvider{results: []Result{
		{Title: "Acme raises Series B", URL: "https://news.test/1"},
		{Title: "", URL: "https://news.test/2"},
		{Title: "Acme opens Busan office", URL: ""},
		{Title: "fourth", URL: "https://news.test/4"},
	}}

	got := NewService(p).LatestNews(context.Background(), "Acme", 3)

	assert.Equal(t, []string{"Acme latest news"}, p.queries)
	assert.Equal(t, []NewsLink{
		{Title: "Acme raises Series B", URL: "https://news.test/1"},
		{Title: NoTitle, URL: "https://news.test/2"},
		{Title: "Acme opens Busan office", URL: ""},
	}, got)
}

func TestLatestNews_FailOpen(t *testing.T) {
	got := NewService(&stubProvider{err: errors.New("down")}).LatestNews(context.Background(), "Acme", 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNew_Tavily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tv-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme 회사 주소", body["query"])
		assert.Equal(t, "basic", body["search_depth"])

		_, _ = w.Write([]byte(`{"results":[
			{"title":"Acme","url":"https://acme.test","content":"Seoul, Gangnam-gu"},
			{"title":"Map","url":"https://map.test","content":""}
		]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Search: config.SearchConfig{Provider: "tavily"},
		Tavily: config.TavilyConfig{Key: "tv-key", BaseURL: srv.URL, SearchDepth: "basic"},
		Fetch:  config.FetchConfig{TimeoutSecs: 5},
	}
	svc, err := New(cfg)
	require.NoError(t, err)

	got := svc.Search(context.Background(), "Acme 회사 주소", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "Seoul, Gangnam-gu", got[0].Content)
}

func TestNew_Jina(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Acme latest news", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":200,"data":[{"title":"","url":"https://news.test/a","description":"snippet"}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Search: config.SearchConfig{Provider: "jina"},
		Jina:   config.JinaConfig{Key: "j", SearchBaseURL: srv.URL},
		Fetch:  config.FetchConfig{TimeoutSecs: 5},
	}
	svc, err := New(cfg)
	require.NoError(t, err)

	got := svc.LatestNews(context.Background(), "Acme", 3)
	assert.Equal(t, []NewsLink{{Title: NoTitle, URL: "https://news.test/a"}}, got)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(&config.Config{Search: config.SearchConfig{Provider: "bing"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "bing"`)
}
