// Package drive_tools lists the Google Docs the assistant has created in the
// user's Drive.
package drive_tools
