package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/calendar"
	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
)

const (
	maxListResults = 100
	displayLayout  = "2006-01-02 15:04"
)

// RegisterCalendarTools registers createBookingEvent and readCalendarEvents.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createTool := mcp.NewTool("createBookingEvent",
		mcp.WithDescription("Create an event on the user's primary Google Calendar and invite attendees"),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time, RFC 3339 or 'YYYY-MM-DD HH:MM' in the event time zone"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("End time, RFC 3339 or 'YYYY-MM-DD HH:MM' in the event time zone"),
		),
		mcp.WithArray("attendees_emails_list",
			mcp.WithStringItems(),
			mcp.Description("Email addresses of the people to invite"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("time_zone",
			mcp.Description("IANA time zone such as 'America/Los_Angeles'. Defaults to the user's calendar zone."),
		),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("createBookingEvent",
		instrumentation.ServiceCalendar, "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateBookingEvent(ctx, request, sc)
		}))

	readTool := mcp.NewTool("readCalendarEvents",
		mcp.WithDescription("List events on the user's primary Google Calendar within a time range"),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Range start, RFC 3339 or 'YYYY-MM-DD HH:MM' in the user's calendar zone"),
		),
		mcp.WithString("end_time",
			mcp.Description("Range end. Defaults to the end of the start day."),
		),
		mcp.WithNumber("max_results",
			mcp.DefaultNumber(calendar.DefaultListLimit),
			mcp.Min(1),
			mcp.Max(maxListResults),
			mcp.Description("Maximum number of events to return"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(readTool, common.InstrumentedToolHandlerWithService("readCalendarEvents",
		instrumentation.ServiceCalendar, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadCalendarEvents(ctx, request, sc)
		}))

	return nil
}

func handleCreateBookingEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	loc := sc.Location()
	tz := strings.TrimSpace(request.GetString("time_zone", ""))
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return common.ErrorResultf("invalid time_zone %q", tz), nil
		}
		loc = l
	}

	start, err := calendar.ParseTime(request.GetString("start_time", ""), loc)
	if err != nil {
		return common.ErrorResultf("invalid start_time: %v", err), nil
	}
	end, err := calendar.ParseTime(request.GetString("end_time", ""), loc)
	if err != nil {
		return common.ErrorResultf("invalid end_time: %v", err), nil
	}
	attendees, err := common.OptionalStringList(request.GetArguments()["attendees_emails_list"], "attendees_emails_list")
	if err != nil {
		return common.ErrorResult(err), nil
	}

	input := calendar.EventInput{
		Summary:     request.GetString("summary", ""),
		Description: request.GetString("description", ""),
		Location:    request.GetString("location", ""),
		Start:       start,
		End:         end,
		TimeZone:    tz,
		Attendees:   attendees,
	}
	if err := input.Validate(); err != nil {
		return common.ErrorResult(err), nil
	}

	client, err := sc.CalendarClient(ctx)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	event, err := client.CreateEvent(ctx, input)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	return mcp.NewToolResultText("Event created: " + event.HTMLLink), nil
}

func handleReadCalendarEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	loc := sc.Location()

	start, err := calendar.ParseTime(request.GetString("start_time", ""), loc)
	if err != nil {
		return common.ErrorResultf("invalid start_time: %v", err), nil
	}
	var end time.Time
	if raw := request.GetString("end_time", ""); strings.TrimSpace(raw) != "" {
		if end, err = calendar.ParseTime(raw, loc); err != nil {
			return common.ErrorResultf("invalid end_time: %v", err), nil
		}
	} else {
		local := start.In(loc)
		end = time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, loc)
	}
	if !end.After(start) {
		return common.ErrorResultf("end_time must be after start_time"), nil
	}
	limit := common.ClampInt(request.GetInt("max_results", calendar.DefaultListLimit), calendar.DefaultListLimit, 1, maxListResults)

	client, err := sc.CalendarClient(ctx)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	events, err := client.ListEvents(ctx, start, end, int64(limit))
	if err != nil {
		return common.ErrorResult(err), nil
	}
	return mcp.NewToolResultText(formatEvents(events, start, end, loc)), nil
}

func formatEvents(events []calendar.EventSummary, start, end time.Time, loc *time.Location) string {
	if len(events) == 0 {
		return fmt.Sprintf("No events found between %s and %s.",
			start.In(loc).Format(displayLayout), end.In(loc).Format(displayLayout))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d events:\n", len(events))
	for i, e := range events {
		title := e.Summary
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, title)
		if e.AllDay {
			fmt.Fprintf(&b, "   When: all day %s\n", e.Start.Format(time.DateOnly))
		} else {
			fmt.Fprintf(&b, "   Start: %s\n   End: %s\n",
				e.Start.In(loc).Format(displayLayout), e.End.In(loc).Format(displayLayout))
		}
		if e.Location != "" {
			fmt.Fprintf(&b, "   Location: %s\n", e.Location)
		}
		if len(e.Attendees) > 0 {
			fmt.Fprintf(&b, "   Attendees: %s\n", strings.Join(e.Attendees, ", "))
		}
		if e.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", e.Description)
		}
		if e.HTMLLink != "" {
			fmt.Fprintf(&b, "   Link: %s\n", e.HTMLLink)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
