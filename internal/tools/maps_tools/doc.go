// Package maps_tools exposes Google Maps place search, geocoding, directions
// and nearby search as MCP tools.
//
// Every tool answers with a configuration hint instead of failing when
// GOOGLE_MAPS_API_KEY is unset, so the model can relay it to the user.
package maps_tools
