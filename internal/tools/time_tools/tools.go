package time_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
)

// RegisterTimeTools registers getCurrentTime.
func RegisterTimeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	timeTool := mcp.NewTool("getCurrentTime",
		mcp.WithDescription("Get the current date, time, weekday and ISO week number"),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone. Defaults to the user's calendar zone."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(timeTool, common.InstrumentedToolHandler("getCurrentTime", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCurrentTime(request, sc)
		}))
	return nil
}

func handleGetCurrentTime(request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	loc := sc.Location()
	if tz := strings.TrimSpace(request.GetString("timezone", "")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return common.ErrorResultf("unknown time zone %q", tz), nil
		}
		loc = l
	}
	return mcp.NewToolResultText(FormatTime(sc.Now().In(loc))), nil
}

// FormatTime renders t with its weekday, ISO week and zone name.
func FormatTime(t time.Time) string {
	_, week := t.ISOWeek()
	return fmt.Sprintf("Current Time: %s\nDay: %s\nWeek: %d\nTimezone: %s",
		t.Format(time.DateTime), t.Weekday(), week, t.Location())
}
