package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatGPTComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, "hello", req.Messages[len(req.Messages)-1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hi there \n"}}]}`))
	}))
	defer srv.Close()

	c, err := NewChatGPT("test-key", "", time.Second)
	require.NoError(t, err)

	got, err := c.WithURL(srv.URL).Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
}

func TestChatGPTAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c, err := NewChatGPT("test-key", "", time.Second)
	require.NoError(t, err)

	_, err = c.WithURL(srv.URL).Complete(context.Background(), "hello")
	assert.ErrorContains(t, err, "rate limited")
}

func TestNewChatGPTRequiresKey(t *testing.T) {
	_, err := NewChatGPT("", "", time.Second)
	assert.Error(t, err)
}
