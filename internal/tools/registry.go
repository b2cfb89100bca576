// Package tools assembles the tool registry shared by the chat agent and the
// MCP server.
package tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/calendar_tools"
	"github.com/ykykj/assistant/internal/tools/docs_tools"
	"github.com/ykykj/assistant/internal/tools/drive_tools"
	"github.com/ykykj/assistant/internal/tools/gmail_tools"
	"github.com/ykykj/assistant/internal/tools/maps_tools"
	"github.com/ykykj/assistant/internal/tools/search_tools"
	"github.com/ykykj/assistant/internal/tools/time_tools"
	"github.com/ykykj/assistant/internal/tools/weather_tools"
)

// Registration registers the tools of one service.
type Registration struct {
	Name     string
	Register func(s *mcpserver.MCPServer, sc *server.ServerContext) error
}

// Registrations lists every tool group in registration order.
var Registrations = []Registration{
	{Name: "Gmail", Register: gmail_tools.RegisterGmailTools},
	{Name: "Calendar", Register: calendar_tools.RegisterCalendarTools},
	{Name: "Docs", Register: docs_tools.RegisterDocsTools},
	{Name: "Drive", Register: drive_tools.RegisterDriveTools},
	{Name: "Maps", Register: maps_tools.RegisterMapsTools},
	{Name: "Weather", Register: weather_tools.RegisterWeatherTools},
	{Name: "Web Search", Register: search_tools.RegisterSearchTools},
	{Name: "Time", Register: time_tools.RegisterTimeTools},
}

// RegisterAll registers every tool group on s.
func RegisterAll(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, reg := range Registrations {
		if err := reg.Register(s, sc); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.Name, err)
		}
	}
	return nil
}
