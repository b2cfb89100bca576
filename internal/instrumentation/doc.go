// Package instrumentation wires OpenTelemetry metrics and tracing into the
// assistant.
//
// Instrumentation is off by default because the assistant usually runs as an
// interactive CLI. Enable it with INSTRUMENTATION_ENABLED=true, typically
// together with `assistant serve --metrics-addr :9090`.
//
// # Metrics
//
// Tools:
//   - assistant_tool_invocations_total{tool,status}
//   - assistant_tool_duration_seconds{tool,status}
//
// Upstream APIs (gmail, calendar, docs, drive, userinfo, maps, weather, search):
//   - assistant_api_operations_total{service,operation,status}
//   - assistant_api_operation_duration_seconds{service,operation,status}
//
// LLM:
//   - assistant_llm_requests_total{provider,model,status}
//   - assistant_llm_request_duration_seconds{provider,model,status}
//   - assistant_llm_tokens_total{provider,model,type}
//
// Agent:
//   - assistant_agent_llm_round_trips{status}
//   - assistant_context_trims_total{strategy}
//
// OAuth:
//   - assistant_oauth_auth_total{result}
//   - assistant_oauth_token_refresh_total{result}
//
// # Tracing
//
// Spans are created per tool call (tool.<name>), per upstream call
// (<service>.<operation>) and per LLM request (llm.chat). Export with
// TRACING_EXPORTER=otlp and OTEL_EXPORTER_OTLP_ENDPOINT, or stdout while
// debugging.
//
// # Audit logging
//
// AuditLogger records each tool invocation as tool_executed or tool_failed.
// Email addresses are reduced to their domain unless
// AUDIT_LOGGING_INCLUDE_PII=true.
package instrumentation
