package jina

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	want := SearchResponse{
		Code: 200,
		Data: []SearchResult{
			{Title: "Acme Corp", URL: "https://acme.com", Content: "Acme builds rockets."},
			{Title: "Acme News", URL: "https://news.test/acme", Description: "Acme raises Series B"},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/Acme Corp latest news", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(want) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	got, err := client.Search(context.Background(), "Acme Corp latest news")

	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "Acme builds rockets.", got.Data[0].Text())
	assert.Equal(t, "Acme raises Series B", got.Data[1].Text())
}

func TestSearch_SiteFilter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "linkedin.com", r.URL.Query().Get("site"))
		w.Write([]byte(`{"code":200,"data":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "Acme", WithSiteFilter("linkedin.com"))
	require.NoError(t, err)
}

func TestSearch_NoKeyNoAuthHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"code":200,"data":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewClient("", WithSearchBaseURL(srv.URL)).Search(context.Background(), "Acme")
	require.NoError(t, err)
}

func TestSearch_NoResults422(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	got, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, got.Data)
}

func TestSearch_ErrorIsSingleAttempt(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`busy`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
	assert.Equal(t, int32(1), hits.Load())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "busy", apiErr.Body)
}

func TestSearch_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal search response")
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient("k", WithSearchBaseURL("")).(*httpClient)
	assert.Equal(t, defaultSearchBaseURL, c.searchBaseURL)
	assert.NotNil(t, c.http)

	hc := &http.Client{}
	c = NewClient("k", WithHTTPClient(hc)).(*httpClient)
	assert.Same(t, hc, c.http)
}
