package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// PrimaryCalendar is the calendar every operation targets.
const PrimaryCalendar = "primary"

// DefaultListLimit caps ListEvents when the caller passes no limit.
const DefaultListLimit = 50

// Client wraps the Google Calendar service.
type Client struct {
	svc      *calendar.Service
	timeZone string
}

// NewClient creates a Calendar client. timeZone is used for events created
// without an explicit zone.
func NewClient(ctx context.Context, timeZone string, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	if timeZone == "" {
		timeZone = "UTC"
	}
	return &Client{svc: svc, timeZone: timeZone}, nil
}

// TimeZone returns the default zone for new events.
func (c *Client) TimeZone() string {
	return c.timeZone
}

// Location loads the default zone, falling back to UTC.
func (c *Client) Location() *time.Location {
	loc, err := time.LoadLocation(c.timeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ListEvents lists single events on the primary calendar between timeMin and
// timeMax, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) ([]EventSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultListLimit
	}

	events, err := c.svc.Events.List(PrimaryCalendar).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// CreateEvent inserts an event on the primary calendar.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*EventSummary, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.TimeZone == "" {
		input.TimeZone = c.timeZone
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}
	for _, email := range input.Attendees {
		if email != "" {
			event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
		}
	}

	created, err := c.svc.Events.Insert(PrimaryCalendar, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}
