package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrProvider  = "provider"
	attrModel     = "model"
	attrTokenType = "type"
	attrStrategy  = "strategy"
)

var (
	apiBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	llmBuckets = []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120}
)

// Metrics records assistant metrics. The zero value is a no-op recorder.
type Metrics struct {
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram

	llmRequestsTotal   metric.Int64Counter
	llmRequestDuration metric.Float64Histogram
	llmTokensTotal     metric.Int64Counter

	agentRoundTrips   metric.Int64Histogram
	contextTrimsTotal metric.Int64Counter

	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.toolInvocationsTotal, err = meter.Int64Counter(
		"assistant_tool_invocations_total",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{invocation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_tool_invocations_total counter: %w", err)
	}

	if m.toolDuration, err = meter.Float64Histogram(
		"assistant_tool_duration_seconds",
		metric.WithDescription("Tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(apiBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_tool_duration_seconds histogram: %w", err)
	}

	if m.apiOperationsTotal, err = meter.Int64Counter(
		"assistant_api_operations_total",
		metric.WithDescription("Total number of upstream API operations"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_api_operations_total counter: %w", err)
	}

	if m.apiOperationDuration, err = meter.Float64Histogram(
		"assistant_api_operation_duration_seconds",
		metric.WithDescription("Upstream API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(apiBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_api_operation_duration_seconds histogram: %w", err)
	}

	if m.llmRequestsTotal, err = meter.Int64Counter(
		"assistant_llm_requests_total",
		metric.WithDescription("Total number of chat completion requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_llm_requests_total counter: %w", err)
	}

	if m.llmRequestDuration, err = meter.Float64Histogram(
		"assistant_llm_request_duration_seconds",
		metric.WithDescription("Chat completion latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(llmBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_llm_request_duration_seconds histogram: %w", err)
	}

	if m.llmTokensTotal, err = meter.Int64Counter(
		"assistant_llm_tokens_total",
		metric.WithDescription("Tokens reported by the LLM provider"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_llm_tokens_total counter: %w", err)
	}

	if m.agentRoundTrips, err = meter.Int64Histogram(
		"assistant_agent_llm_round_trips",
		metric.WithDescription("LLM round trips needed to answer one user message"),
		metric.WithUnit("{round_trip}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 5, 7, 10),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_agent_llm_round_trips histogram: %w", err)
	}

	if m.contextTrimsTotal, err = meter.Int64Counter(
		"assistant_context_trims_total",
		metric.WithDescription("Conversation trims applied to stay within the context budget"),
		metric.WithUnit("{trim}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_context_trims_total counter: %w", err)
	}

	if m.oauthAuthTotal, err = meter.Int64Counter(
		"assistant_oauth_auth_total",
		metric.WithDescription("Interactive OAuth authorizations by result"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_oauth_auth_total counter: %w", err)
	}

	if m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"assistant_oauth_token_refresh_total",
		metric.WithDescription("OAuth token refreshes by result"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create assistant_oauth_token_refresh_total counter: %w", err)
	}

	return m, nil
}

// RecordToolInvocation records one tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAPIOperation records one call to an upstream API such as gmail or maps.
func (m *Metrics) RecordAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.apiOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.apiOperationsTotal.Add(ctx, 1, attrs)
	m.apiOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordLLMRequest records one chat completion and the token usage the
// provider reported for it.
func (m *Metrics) RecordLLMRequest(ctx context.Context, provider, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	if m == nil || m.llmRequestsTotal == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, provider),
		attribute.String(attrModel, model),
	}
	withStatus := metric.WithAttributes(append(attrs, attribute.String(attrStatus, status))...)
	m.llmRequestsTotal.Add(ctx, 1, withStatus)
	m.llmRequestDuration.Record(ctx, duration.Seconds(), withStatus)

	if promptTokens > 0 {
		m.llmTokensTotal.Add(ctx, int64(promptTokens),
			metric.WithAttributes(append(attrs, attribute.String(attrTokenType, TokenTypePrompt))...))
	}
	if completionTokens > 0 {
		m.llmTokensTotal.Add(ctx, int64(completionTokens),
			metric.WithAttributes(append(attrs, attribute.String(attrTokenType, TokenTypeCompletion))...))
	}
}

// RecordAgentTurn records how many LLM round trips one user message took.
func (m *Metrics) RecordAgentTurn(ctx context.Context, status string, roundTrips int) {
	if m == nil || m.agentRoundTrips == nil {
		return
	}
	m.agentRoundTrips.Record(ctx, int64(roundTrips), metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordContextTrim records one context trimming pass.
func (m *Metrics) RecordContextTrim(ctx context.Context, strategy string) {
	if m == nil || m.contextTrimsTotal == nil {
		return
	}
	m.contextTrimsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStrategy, strategy)))
}

// RecordOAuthAuth records an interactive authorization attempt.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthAuthTotal == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh records a token refresh attempt.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}
