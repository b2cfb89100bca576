package weather_tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
	"github.com/ykykj/assistant/internal/weather"
)

// RegisterWeatherTools registers getWeather.
func RegisterWeatherTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	weatherTool := mcp.NewTool("getWeather",
		mcp.WithDescription("Get the current weather for a city, or the 3-day forecast when a date is given"),
		mcp.WithString("city",
			mcp.Required(),
			mcp.Description("City name in English or Chinese, e.g. 'Beijing', '上海', 'Tokyo'"),
		),
		mcp.WithString("date",
			mcp.Description("Optional day of interest (YYYY-MM-DD, 'tomorrow'). Omit for current conditions."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(weatherTool, common.InstrumentedToolHandlerWithService("getWeather",
		instrumentation.ServiceWeather, "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetWeather(ctx, request, sc)
		}))
	return nil
}

func handleGetWeather(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	city := strings.TrimSpace(request.GetString("city", ""))
	if city == "" {
		return common.ErrorResultf("city is required"), nil
	}
	date := request.GetString("date", "")

	client := sc.WeatherClient()
	var (
		out string
		err error
	)
	if wantsForecast(date, sc.Now()) {
		out, err = client.Forecast(ctx, city)
	} else {
		out, err = client.CurrentWeather(ctx, city)
	}

	switch {
	case errors.Is(err, weather.ErrNotConfigured):
		return mcp.NewToolResultError(weather.NotConfiguredMessage), nil
	case errors.Is(err, weather.ErrCityNotFound):
		return common.ErrorResultf("city not found: %s, please check the city name", city), nil
	case err != nil:
		return common.ErrorResultf("failed to get weather for %s: %v", city, err), nil
	}
	return mcp.NewToolResultText(out), nil
}

// wantsForecast reports whether date names a day other than today.
func wantsForecast(date string, now time.Time) bool {
	date = strings.ToLower(strings.TrimSpace(date))
	switch date {
	case "", "now", "today", "今天":
		return false
	}
	if d, err := time.Parse(time.DateOnly, date); err == nil {
		return d.Format(time.DateOnly) != now.Format(time.DateOnly)
	}
	return true
}
