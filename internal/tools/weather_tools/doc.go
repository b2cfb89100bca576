// Package weather_tools exposes QWeather conditions and forecasts as the
// getWeather MCP tool.
package weather_tools
