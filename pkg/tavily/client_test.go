package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		wantCount int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"query": "Acme Corp homepage",
				"results": [
					{"title": "Acme", "url": "https://acme.com", "content": "Acme builds rockets", "score": 0.91},
					{"title": "Acme Wiki", "url": "https://wiki.test/acme", "content": "Founded 1999", "score": 0.7}
				],
				"response_time": 1.2
			}`,
			wantCount: 2,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"detail":{"error":"invalid api key"}}`,
			wantErr: "unexpected status 401",
		},
		{
			name:    "rate_limit",
			status:  http.StatusTooManyRequests,
			body:    `{"detail":"too many requests"}`,
			wantErr: "unexpected status 429",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			resp, err := client.Search(context.Background(), SearchRequest{Query: "Acme Corp homepage"})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			require.Len(t, resp.Results, tt.wantCount)
			assert.Equal(t, "https://acme.com", resp.Results[0].URL)
			assert.Equal(t, "Acme builds rockets", resp.Results[0].Content)
		})
	}
}

func TestSearch_RequestBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Acme Corp competitors", req["query"])
		assert.Equal(t, "basic", req["search_depth"])
		_, hasMax := req["max_results"]
		assert.False(t, hasMax)

		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("test-key", WithBaseURL(srv.URL)).
		Search(context.Background(), SearchRequest{Query: "Acme Corp competitors"})
	require.NoError(t, err)
}

func TestSearch_ConfiguredDepth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "advanced", req.SearchDepth)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL), WithSearchDepth("advanced")).
		Search(context.Background(), SearchRequest{Query: "q"})
	require.NoError(t, err)
}

func TestSearch_NoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Search(context.Background(), SearchRequest{Query: "q"})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSearch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := NewClient("k", WithBaseURL(addr)).Search(context.Background(), SearchRequest{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tavily: send request")
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("k", WithBaseURL(""), WithSearchDepth("")).(*httpClient)
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, defaultSearchDepth, c.searchDepth)

	hc := &http.Client{}
	c = NewClient("k", WithHTTPClient(hc)).(*httpClient)
	assert.Same(t, hc, c.http)
}
