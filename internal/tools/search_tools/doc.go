// Package search_tools exposes web search as the webSearch MCP tool.
package search_tools
