// Package resources exposes read-only MCP resources describing the
// assistant's user and setup.
//
// Resources are only served by `assistant serve`; the chat agent reads the
// same information directly from the server context.
package resources
