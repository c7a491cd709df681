package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aitrendhub/backend/config"
	"github.com/aitrendhub/backend/model"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// ProviderConfig bind one provider selector to its endpoint and model
// adding a provider is a new entry here, not a new code path
type ProviderConfig struct {
	BaseURL string
	Model   string
}

// DefaultProviders returns the supported providers
// both expose an OpenAI compatible chat completion endpoint, so one client covers them
func DefaultProviders() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"openai": {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		"groq":   {BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.1-8b-instant"},
	}
}

// the sentence count is requested through the instruction only, there is no post-hoc check
const summarizeInstruction = "You are a technical writer. Summarize the following GitHub repository in exactly 3 sentences: " +
	"what it does, its key features, and its intended use case. Return plain prose only."

type SummarizeService interface {
	Summarize(ctx context.Context, req model.SummarizeRequest) (model.SummarizeResponse, error)
}

type summarizeService struct {
	providers map[string]ProviderConfig
	timeout   time.Duration
}

func NewSummarizeService(cfg config.Config, providers map[string]ProviderConfig) SummarizeService {
	return summarizeService{
		providers: providers,
		timeout:   time.Duration(cfg.Summarize.RequestTimeoutSeconds) * time.Second,
	}
}

// Summarize validate the request and dispatch it to the selected provider
// the caller api key is used for this single call and is never logged or stored
func (s summarizeService) Summarize(ctx context.Context, req model.SummarizeRequest) (model.SummarizeResponse, error) {
	provider, supported := s.providers[req.Provider]

	if req.Text == "" || req.APIKey == "" || !supported {
		return model.SummarizeResponse{}, fmt.Errorf("VALIDATION_ERROR")
	}

	log.WithFields(log.Fields{
		"provider":   req.Provider,
		"model":      provider.Model,
		"textLength": len(req.Text),
	}).Info("dispatch summarization request")

	clientConfig := openai.DefaultConfig(req.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(provider.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: s.timeout}

	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: provider.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizeInstruction},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: 0.3,
	})

	if err != nil {
		return model.SummarizeResponse{}, s.handleProviderError(req.Provider, err)
	}

	if len(resp.Choices) == 0 {
		log.WithField("provider", req.Provider).Error("provider returned an empty completion")
		return model.SummarizeResponse{}, model.NewProviderError(http.StatusBadGateway, "the %s endpoint returned an empty completion", req.Provider)
	}

	return model.SummarizeResponse{
		Summary:     strings.TrimSpace(resp.Choices[0].Message.Content),
		Provider:    req.Provider,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// handleProviderError convert go-openai errors into a ProviderError carrying the upstream status
// error messages from the library never contain the request api key
func (s summarizeService) handleProviderError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		log.WithFields(log.Fields{
			"provider": provider,
			"status":   apiErr.HTTPStatusCode,
		}).Error("provider endpoint returned an error")

		return model.NewProviderError(apiErr.HTTPStatusCode, "the %s endpoint rejected the request: %s", provider, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		log.WithFields(log.Fields{
			"provider": provider,
			"status":   reqErr.HTTPStatusCode,
		}).Error("provider endpoint returned an error")

		return model.NewProviderError(reqErr.HTTPStatusCode, "the %s endpoint rejected the request", provider)
	}

	log.WithField("provider", provider).Error("provider endpoint unreachable")
	return model.NewProviderError(http.StatusBadGateway, "the %s endpoint is unreachable", provider)
}
