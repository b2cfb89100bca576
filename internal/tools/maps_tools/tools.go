package maps_tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/maps"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
)

func languageOption() mcp.ToolOption {
	return mcp.WithString("language",
		mcp.Description("Result language such as 'zh-CN' or 'en'. Defaults to the configured language."),
	)
}

// RegisterMapsTools registers searchPlace, geocodeAddress, reverseGeocode,
// getDirections and findNearbyPlaces.
func RegisterMapsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	register := func(tool mcp.Tool, operation string, handler common.Handler) {
		s.AddTool(tool, common.InstrumentedToolHandlerWithService(tool.Name,
			instrumentation.ServiceMaps, operation, sc, handler))
	}

	register(mcp.NewTool("searchPlace",
		mcp.WithDescription("Search places by free text, e.g. 'coffee near Union Square'"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to search for"),
		),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	), "textsearch", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return mapsResult(sc.MapsService().SearchPlace(ctx, query, request.GetString("language", "")))
	})

	register(mcp.NewTool("geocodeAddress",
		mcp.WithDescription("Convert an address or place name into coordinates and address components"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Address or place name"),
		),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	), "geocode", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address, err := request.RequireString("address")
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return mapsResult(sc.MapsService().GeocodeAddress(ctx, address, request.GetString("language", "")))
	})

	register(mcp.NewTool("reverseGeocode",
		mcp.WithDescription("Find the address at a latitude and longitude"),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Min(-90),
			mcp.Max(90),
			mcp.Description("Latitude in degrees"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Min(-180),
			mcp.Max(180),
			mcp.Description("Longitude in degrees"),
		),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	), "reverse_geocode", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lat, err := request.RequireFloat("latitude")
		if err != nil {
			return common.ErrorResult(err), nil
		}
		lng, err := request.RequireFloat("longitude")
		if err != nil {
			return common.ErrorResult(err), nil
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return common.ErrorResultf("coordinates (%v, %v) are out of range", lat, lng), nil
		}
		return mapsResult(sc.MapsService().ReverseGeocode(ctx, lat, lng, request.GetString("language", "")))
	})

	register(mcp.NewTool("getDirections",
		mcp.WithDescription("Get a route between two places with distance, duration and turn-by-turn steps"),
		mcp.WithString("origin",
			mcp.Required(),
			mcp.Description("Starting address or place"),
		),
		mcp.WithString("destination",
			mcp.Required(),
			mcp.Description("Destination address or place"),
		),
		mcp.WithString("mode",
			mcp.DefaultString("driving"),
			mcp.Enum("driving", "walking", "bicycling", "transit"),
			mcp.Description("Travel mode"),
		),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	), "directions", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		origin, err := request.RequireString("origin")
		if err != nil {
			return common.ErrorResult(err), nil
		}
		destination, err := request.RequireString("destination")
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return mapsResult(sc.MapsService().GetDirections(ctx, origin, destination,
			request.GetString("mode", ""), request.GetString("language", "")))
	})

	register(mcp.NewTool("findNearbyPlaces",
		mcp.WithDescription("Find places of a given type around a location"),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("Address or place to search around"),
		),
		mcp.WithNumber("radius",
			mcp.DefaultNumber(maps.DefaultRadius),
			mcp.Min(1),
			mcp.Max(maps.MaxRadius),
			mcp.Description("Search radius in meters"),
		),
		mcp.WithString("type",
			mcp.DefaultString(maps.DefaultPlaceType),
			mcp.Description("Place type such as restaurant, cafe, hospital, gas_station"),
		),
		languageOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	), "nearby", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		location, err := request.RequireString("location")
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return mapsResult(sc.MapsService().FindNearbyPlaces(ctx, location,
			request.GetString("type", maps.DefaultPlaceType),
			request.GetInt("radius", maps.DefaultRadius),
			request.GetString("language", "")))
	})

	return nil
}

// mapsResult converts a maps.Service answer into a tool result. Vendor
// failures keep their "<Op> failed:" text.
func mapsResult(out string, err error) (*mcp.CallToolResult, error) {
	var mapsErr *maps.Error
	switch {
	case err == nil:
		return mcp.NewToolResultText(out), nil
	case errors.Is(err, maps.ErrNotConfigured):
		return mcp.NewToolResultError(maps.NotConfiguredMessage), nil
	case errors.As(err, &mapsErr):
		return mcp.NewToolResultError(mapsErr.Error()), nil
	default:
		return common.ErrorResult(err), nil
	}
}
