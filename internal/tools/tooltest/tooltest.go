// Package tooltest holds helpers for exercising registered tools against
// fake vendor endpoints.
package tooltest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/server"
)

// Config returns a configuration with no optional integrations enabled.
func Config() *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{
			AuthEmail:        "me@example.com",
			CalendarTimezone: "Asia/Shanghai",
		},
	}
}

// NewServerContext creates a ServerContext for cfg, shut down at cleanup.
// now may be nil.
func NewServerContext(t *testing.T, cfg *config.Config, now func() time.Time) *server.ServerContext {
	t.Helper()
	if cfg == nil {
		cfg = Config()
	}
	sc, err := server.NewServerContext(context.Background(), server.Options{Config: cfg, Now: now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// GoogleAPI starts handler and returns client options pointing a Google API
// client at it.
func GoogleAPI(t *testing.T, handler http.HandlerFunc) []option.ClientOption {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithHTTPClient(srv.Client()),
	}
}

// Call invokes the named tool on s and returns its text and error flag.
func Call(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]any) (string, bool) {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s is not registered", name)

	result, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	var parts []string
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n"), result.IsError
}

// NewMCPServer returns an empty tool server.
func NewMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(false))
}
