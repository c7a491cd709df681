package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aitrendhub/backend/config"
	"github.com/aitrendhub/backend/model"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

// chatCompletionHandler mimic an OpenAI compatible chat completion endpoint
// it counts hits and records the model requested by the client
func chatCompletionHandler(summary string, hits *int32, requestedModel *atomic.Value) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)

		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		requestedModel.Store(body.Model)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": %q,
			"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}]
		}`, body.Model, summary)
	}
}

// TestSummarizeValidation invalid requests fail without any network call
func TestSummarizeValidation(t *testing.T) {
	var hits int32
	var requestedModel atomic.Value

	server := httptest.NewServer(chatCompletionHandler("should never be returned", &hits, &requestedModel))
	defer server.Close()

	providers := map[string]ProviderConfig{
		"openai": {BaseURL: server.URL, Model: "gpt-4o-mini"},
		"groq":   {BaseURL: server.URL, Model: "llama-3.1-8b-instant"},
	}

	tests := []struct {
		name    string
		request model.SummarizeRequest
	}{
		{
			name:    "Missing text",
			request: model.SummarizeRequest{APIKey: "sk-test", Provider: "openai"},
		},
		{
			name:    "Missing api key",
			request: model.SummarizeRequest{Text: "a repository readme", Provider: "openai"},
		},
		{
			name:    "Missing provider",
			request: model.SummarizeRequest{Text: "a repository readme", APIKey: "sk-test"},
		},
		{
			name:    "Unsupported provider",
			request: model.SummarizeRequest{Text: "a repository readme", APIKey: "sk-test", Provider: "gemini"},
		},
	}

	svc := NewSummarizeService(*config.GetDefault(), providers)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Summarize(context.Background(), tt.request)

			assert.Error(t, err)
			assert.EqualError(t, err, "VALIDATION_ERROR")
			assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
		})
	}
}

// TestSummarizeProviderRouting each selector only ever contacts its own endpoint with its own model
func TestSummarizeProviderRouting(t *testing.T) {
	var openaiHits, groqHits int32
	var openaiModel, groqModel atomic.Value

	openaiServer := httptest.NewServer(chatCompletionHandler("summary from openai", &openaiHits, &openaiModel))
	defer openaiServer.Close()

	groqServer := httptest.NewServer(chatCompletionHandler("summary from groq", &groqHits, &groqModel))
	defer groqServer.Close()

	providers := map[string]ProviderConfig{
		"openai": {BaseURL: openaiServer.URL, Model: "gpt-4o-mini"},
		"groq":   {BaseURL: groqServer.URL, Model: "llama-3.1-8b-instant"},
	}

	svc := NewSummarizeService(*config.GetDefault(), providers)

	// openai selector
	result, err := svc.Summarize(context.Background(), model.SummarizeRequest{
		Text:     "a repository readme",
		APIKey:   "sk-test",
		Provider: "openai",
	})

	assert.NoError(t, err)
	assert.Equal(t, "summary from openai", result.Summary)
	assert.Equal(t, "openai", result.Provider)
	assert.False(t, result.GeneratedAt.IsZero())
	assert.Equal(t, int32(1), atomic.LoadInt32(&openaiHits))
	assert.Equal(t, int32(0), atomic.LoadInt32(&groqHits))
	assert.Equal(t, "gpt-4o-mini", openaiModel.Load())

	// groq selector
	result, err = svc.Summarize(context.Background(), model.SummarizeRequest{
		Text:     "a repository readme",
		APIKey:   "gsk-test",
		Provider: "groq",
	})

	assert.NoError(t, err)
	assert.Equal(t, "summary from groq", result.Summary)
	assert.Equal(t, "groq", result.Provider)
	assert.Equal(t, int32(1), atomic.LoadInt32(&openaiHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&groqHits))
	assert.Equal(t, "llama-3.1-8b-instant", groqModel.Load())
}

// TestSummarizeProviderFailure a non 2xx provider response becomes a ProviderError carrying the upstream status
func TestSummarizeProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error": {"message": "over capacity", "type": "server_error"}}`)
	}))
	defer server.Close()

	providers := map[string]ProviderConfig{
		"openai": {BaseURL: server.URL, Model: "gpt-4o-mini"},
		"groq":   {BaseURL: server.URL, Model: "llama-3.1-8b-instant"},
	}

	svc := NewSummarizeService(*config.GetDefault(), providers)

	_, err := svc.Summarize(context.Background(), model.SummarizeRequest{
		Text:     "a repository readme",
		APIKey:   "sk-test",
		Provider: "groq",
	})

	assert.Error(t, err)

	providerErr, ok := err.(*model.ProviderError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, providerErr.StatusCode)
	assert.NotContains(t, providerErr.Message, "sk-test")
}

// TestSummarizeCredentialNeverLeaks the api key appears in no log entry, error or response on any path
func TestSummarizeCredentialNeverLeaks(t *testing.T) {
	const secret = "sk-super-secret-credential"

	hook := logrusTest.NewGlobal()
	defer hook.Reset()

	var hits int32
	var requestedModel atomic.Value

	okServer := httptest.NewServer(chatCompletionHandler("three sentences of prose", &hits, &requestedModel))
	defer okServer.Close()

	failingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failingServer.Close()

	providers := map[string]ProviderConfig{
		"openai": {BaseURL: okServer.URL, Model: "gpt-4o-mini"},
		"groq":   {BaseURL: failingServer.URL, Model: "llama-3.1-8b-instant"},
	}

	svc := NewSummarizeService(*config.GetDefault(), providers)

	// success path
	result, err := svc.Summarize(context.Background(), model.SummarizeRequest{
		Text:     "a repository readme",
		APIKey:   secret,
		Provider: "openai",
	})
	assert.NoError(t, err)

	responseBody, err := json.Marshal(result)
	assert.NoError(t, err)
	assert.NotContains(t, string(responseBody), secret)

	// failure path
	_, err = svc.Summarize(context.Background(), model.SummarizeRequest{
		Text:     "a repository readme",
		APIKey:   secret,
		Provider: "groq",
	})
	assert.Error(t, err)
	assert.NotContains(t, err.Error(), secret)

	if providerErr, ok := err.(*model.ProviderError); ok {
		assert.NotContains(t, providerErr.Message, secret)
	}

	for _, entry := range hook.AllEntries() {
		assert.NotContains(t, entry.Message, secret)

		for _, value := range entry.Data {
			assert.NotContains(t, fmt.Sprintf("%v", value), secret)
		}
	}
}
