package transform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(GeminiOptions{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewGeminiClient(GeminiOptions{APIKey: "   "})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "# Title\n"}, {"text": "\nBody"}]},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer server.Close()

	g, err := NewGeminiClient(GeminiOptions{
		APIKey:      "secret",
		Model:       "gemini-test",
		Endpoint:    server.URL + "/v1beta/",
		Temperature: 0.2,
	})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", out)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "hello", gotReq.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.2, gotReq.GenerationConfig.Temperature)
}

func TestGeminiGenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		fatal     bool
		temporary bool
		apiError  bool
	}{
		{
			name:     "invalid key",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			fatal:    true,
			apiError: true,
		},
		{
			name:     "permission denied",
			status:   http.StatusForbidden,
			body:     `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`,
			fatal:    true,
			apiError: true,
		},
		{
			name:      "overloaded",
			status:    http.StatusServiceUnavailable,
			body:      `{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`,
			temporary: true,
			apiError:  true,
		},
		{
			name:      "rate limited plain body",
			status:    http.StatusTooManyRequests,
			body:      `slow down`,
			temporary: true,
			apiError:  true,
		},
		{
			name:   "blocked prompt",
			status: http.StatusOK,
			body:   `{"promptFeedback":{"blockReason":"SAFETY"}}`,
		},
		{
			name:   "no candidates",
			status: http.StatusOK,
			body:   `{"candidates":[]}`,
		},
		{
			name:   "empty text",
			status: http.StatusOK,
			body:   `{"candidates":[{"content":{"parts":[{"text":"  "}]},"finishReason":"MAX_TOKENS"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g, err := NewGeminiClient(GeminiOptions{APIKey: "k", Endpoint: server.URL})
			require.NoError(t, err)

			_, err = g.Generate(context.Background(), "prompt")
			require.Error(t, err)

			var apiErr *APIError
			assert.Equal(t, tt.apiError, errors.As(err, &apiErr))
			if tt.apiError {
				assert.Equal(t, tt.fatal, apiErr.Fatal())
				assert.Equal(t, tt.temporary, apiErr.Temporary())
			}
		})
	}
}
