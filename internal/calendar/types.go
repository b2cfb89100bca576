package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput represents the input for creating a calendar event.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	// TimeZone is an IANA name; empty uses the client's zone.
	TimeZone  string
	Attendees []string
}

// Validate checks the fields the Calendar API would otherwise reject.
func (in EventInput) Validate() error {
	var errs []error
	if strings.TrimSpace(in.Summary) == "" {
		errs = append(errs, errors.New("summary is required"))
	}
	if in.Start.IsZero() || in.End.IsZero() {
		errs = append(errs, errors.New("start and end times are required"))
	} else if !in.End.After(in.Start) {
		errs = append(errs, errors.New("end time must be after start time"))
	}
	return errors.Join(errs...)
}

// EventSummary represents a simplified calendar event.
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Organizer   string
	Status      string
	Attendees   []string
	HTMLLink    string
}

func toEventSummary(event *calendar.Event) EventSummary {
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}

	var startAllDay bool
	summary.Start, startAllDay = parseEventTime(event.Start)
	summary.End, _ = parseEventTime(event.End)
	summary.AllDay = startAllDay

	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}
	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, att.Email)
	}
	return summary
}

// parseEventTime reports the instant and whether it is a date-only value.
func parseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t, false
		}
	}
	if dt.Date != "" {
		if t, err := time.Parse(time.DateOnly, dt.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inputLayouts are the time formats accepted by ParseTime, most specific first.
var inputLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTime reads an RFC 3339 timestamp or a local wall-clock time such as
// "2025-03-14 15:00". Values without an offset are interpreted in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("time is empty")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q, use RFC 3339 or YYYY-MM-DD HH:MM", s)
}
