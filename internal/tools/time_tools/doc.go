// Package time_tools exposes the getCurrentTime MCP tool, which grounds
// relative dates such as "tomorrow" or "next Friday".
package time_tools
