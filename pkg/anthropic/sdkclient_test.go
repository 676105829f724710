package anthropic

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

func messageJSON(id string, content []map[string]any, usage map[string]any) map[string]any {
	return map[string]any{
		"id":          id,
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": "end_turn",
		"usage":       usage,
	}
}

func TestSDKClient_CreateMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasTools := body["tools"]
		assert.False(t, hasTools)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageJSON("msg_test_001", //nolint:errcheck
			[]map[string]any{{"type": "text", "text": "Hello from test"}},
			map[string]any{"input_tokens": 10, "output_tokens": 5},
		))
	}))
	defer ts.Close()

	client := NewClient("test-key", ts.URL)
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "Hello"}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "claude-sonnet-4-5-20250929", resp.Model)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, "Hello from test", resp.Text())
	assert.Equal(t, int64(10), resp.Usage.InputTokens)
	assert.Equal(t, int64(5), resp.Usage.OutputTokens)
}

func TestSDKClient_CreateMessage_SystemTempAndWebSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			System      []map[string]any `json:"system"`
			Temperature float64          `json:"temperature"`
			Tools       []map[string]any `json:"tools"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		require.Len(t, body.System, 1)
		assert.Equal(t, "You are a B2B lead scout.", body.System[0]["text"])
		assert.InDelta(t, 0.3, body.Temperature, 1e-9)
		require.Len(t, body.Tools, 1)
		assert.Equal(t, "web_search_20250305", body.Tools[0]["type"])
		assert.Equal(t, "web_search", body.Tools[0]["name"])
		assert.EqualValues(t, 3, body.Tools[0]["max_uses"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageJSON("msg_ws", //nolint:errcheck
			[]map[string]any{
				{"type": "text", "text": "Searching. "},
				{"type": "text", "text": `{"leads":[]}`},
			},
			map[string]any{
				"input_tokens":    50,
				"output_tokens":   3,
				"server_tool_use": map[string]any{"web_search_requests": 2},
			},
		))
	}))
	defer ts.Close()

	temp := 0.3
	resp, err := NewClient("test-key", ts.URL).CreateMessage(context.Background(), MessageRequest{
		Model:       "claude-sonnet-4-5-20250929",
		MaxTokens:   128,
		System:      "You are a B2B lead scout.",
		Messages:    []Message{{Role: "user", Content: "Find leads"}},
		Temperature: &temp,
		WebSearch:   &WebSearch{MaxUses: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, `Searching. {"leads":[]}`, resp.Text())
	assert.Equal(t, int64(2), resp.Usage.WebSearchQueries)
}

func TestSDKClient_CreateMessage_ErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}))
	defer ts.Close()

	_, err := NewClient("test-key", ts.URL).CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "Hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
	assert.Equal(t, int32(1), hits.Load())
}
