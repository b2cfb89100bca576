package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/logging"
)

// Instrumented records a span, request metrics and a debug log line around
// every completion.
type Instrumented struct {
	Client   Client
	Provider string
	Metrics  *instrumentation.Metrics
	Logger   *slog.Logger
}

func (c *Instrumented) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	ctx, span := instrumentation.StartLLMSpan(ctx, c.Provider, req.Model)
	defer span.End()

	start := time.Now()
	resp, err := c.Client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.Metrics.RecordLLMRequest(ctx, c.Provider, req.Model, status, duration,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if c.Logger != nil {
		c.Logger.DebugContext(ctx, "chat completion",
			logging.Provider(c.Provider),
			logging.Model(req.Model),
			slog.Int("messages", len(req.Messages)),
			slog.Int("tools", len(req.Tools)),
			slog.Int("prompt_tokens", resp.Usage.PromptTokens),
			slog.Int("completion_tokens", resp.Usage.CompletionTokens),
			slog.Duration(logging.KeyDuration, duration),
			logging.Status(status),
			logging.Err(err))
	}
	return resp, err
}
