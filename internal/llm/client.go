// Package llm talks to chat completion backends.
//
// The conversation is always expressed with go-openai message types. DeepSeek
// speaks that protocol natively; Gemini is translated by GeminiClient.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/instrumentation"
)

// Client is the subset of openai.Client used by the agent.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint such as
// DeepSeek. An empty baseURL keeps the go-openai default.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// New builds the instrumented client for the configured provider.
func New(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) (Client, error) {
	var inner Client
	switch cfg.LLM.Provider {
	case config.ProviderDeepSeek:
		inner = NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	case config.ProviderGemini:
		gc, err := NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		inner = gc
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLM.Provider)
	}

	return &Instrumented{
		Client:   inner,
		Provider: cfg.LLM.Provider,
		Metrics:  metrics,
		Logger:   logger,
	}, nil
}
