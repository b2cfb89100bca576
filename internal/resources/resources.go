package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/server"
)

// Resource URIs.
const (
	ProfileURI  = "user://profile"
	SettingsURI = "assistant://settings"
)

// RegisterResources registers the profile and settings resources on s.
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		ProfileURI,
		"Current User Profile",
		mcp.WithResourceDescription("Name and email of the authorized Google account"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Assistant Settings",
		mcp.WithResourceDescription("LLM provider, calendar time zone and which optional integrations are configured"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(ctx, request, sc)
	})

	return nil
}

func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	info, err := sc.UserInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	profileData := map[string]any{
		"name":        info.Name,
		"givenName":   info.GivenName,
		"email":       info.Email,
		"displayName": info.DisplayName(),
	}
	return jsonContents(request.Params.URI, profileData)
}

func handleSettings(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	settingsData := map[string]any{
		"provider":         cfg.LLM.Provider,
		"model":            cfg.Model(),
		"calendarTimezone": sc.Location().String(),
		"mapsLanguage":     cfg.Maps.Language,
		"integrations":     sc.Integrations(),
	}
	return jsonContents(request.Params.URI, settingsData)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
