// Package calendar_tools exposes the user's primary Google Calendar as MCP
// tools for booking events and reading the agenda.
//
// Times may be given as RFC 3339 or as local wall-clock values such as
// "2025-03-14 15:00", which are read in the event's time zone or, when none
// is given, in the configured calendar zone.
package calendar_tools
