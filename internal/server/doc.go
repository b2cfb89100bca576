// Package server holds the process-wide state shared by the tools and the
// optional operational HTTP endpoints.
//
// ServerContext creates vendor clients lazily. Google Workspace clients share
// one OAuth HTTP client, so the interactive authorization flow runs at most
// once per process no matter which tool needs it first.
//
// MetricsServer exposes /metrics for Prometheus next to /healthz and /readyz
// while the assistant runs as an MCP server.
package server
