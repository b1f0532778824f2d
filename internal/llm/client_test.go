package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"startup-os-backend/internal/llm"
)

func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_CompleteJSON(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "```json\n{\"score\": 80}\n```")
	client := llm.NewClient(srv.URL+"/", "sk-test", "test-model", 5*time.Second)

	raw, err := client.CompleteJSON(context.Background(), llm.Request{
		System: "You evaluate startup ideas.",
		Prompt: "Idea: a marketplace",
		Shape:  `{"score": number}`,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 80}`, string(raw))
	assert.Equal(t, "test-model", client.Model())
}

func TestClient_CompleteJSON_InvalidContent(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "Sure! Here is your plan.")
	client := llm.NewClient(srv.URL, "sk-test", "test-model", 5*time.Second)

	_, err := client.CompleteJSON(context.Background(), llm.Request{Prompt: "p"})

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrInvalidResponse)
}

func TestClient_CompleteJSON_HTTPError(t *testing.T) {
	srv := completionServer(t, http.StatusTooManyRequests, "")
	client := llm.NewClient(srv.URL, "sk-test", "test-model", 5*time.Second)

	_, err := client.CompleteJSON(context.Background(), llm.Request{Prompt: "p"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, llm.ErrInvalidResponse)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json{\"a\":1}```  ", `{"a":1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, llm.StripFences(tt.in))
	}
}
