package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thoughtforest/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(url string) *OpenAI {
	return NewOpenAI(config.OpenAIConfig{APIKey: "sk-test", BaseURL: url, Model: "gpt-3.5-turbo", Timeout: 5 * time.Second})
}

func TestOpenAI_Summarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Zero(t, req.Temperature)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "in 3 bullet point lines")
		assert.Contains(t, req.Messages[0].Content, "went hiking")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  - I went hiking\n"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestOpenAI(srv.URL).Summarize(context.Background(), "went hiking", 3)
	require.NoError(t, err)
	assert.Equal(t, "- I went hiking", out)
}

func TestOpenAI_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).Summarize(context.Background(), "text", 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "bad key", apiErr.Message)
	assert.False(t, IsRetryable(err))
}

func TestOpenAI_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).Summarize(context.Background(), "text", 1)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&APIError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRetryable(&APIError{StatusCode: http.StatusBadGateway}))
	assert.False(t, IsRetryable(&APIError{StatusCode: http.StatusBadRequest}))
	assert.False(t, IsRetryable(ErrUnavailable))
	assert.False(t, IsRetryable(fmt.Errorf("decode: %w", ErrEmptyCompletion)))
	assert.True(t, IsRetryable(errors.New("connection reset")))
	assert.False(t, IsRetryable(nil))
}
