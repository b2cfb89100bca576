package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/logging"
	"github.com/ykykj/assistant/internal/server"
)

var errToolResult = errors.New("tool returned an error result")

// Handler is the signature of an mcp-go tool handler.
type Handler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler that calls no external
// service, such as getCurrentTime.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("getCurrentTime", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler Handler) Handler {
	return InstrumentedToolHandlerWithService(toolName, instrumentation.ServiceLocal, "call", sc, handler)
}

// InstrumentedToolHandlerWithService wraps handler with a tool span, the tool
// and service operation metrics, a debug log line and an audit record.
// A result with IsError set counts as a failure.
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler Handler,
) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithService(serviceName, operation)
		if email := sc.UserEmail(); email != "" {
			invocation.WithUser(email)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			instrumentation.SetSpanError(span, errToolResult)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics := sc.Metrics()
		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		if serviceName != instrumentation.ServiceLocal {
			metrics.RecordAPIOperation(ctx, serviceName, operation, status, duration)
		}

		logging.WithTool(sc.Logger(), toolName).Debug("tool call finished",
			logging.Service(serviceName),
			logging.Operation(operation),
			logging.Status(status),
			"duration", duration)

		if auditLogger := sc.AuditLogger(); auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}
		return result, err
	}
}
