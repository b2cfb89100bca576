package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/tools/tooltest"
)

// readResource sends a resources/read request and decodes the JSON-RPC reply.
func readResource(t *testing.T, s *mcpserver.MCPServer, uri string) map[string]any {
	t.Helper()
	req := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":%q}}`, uri)
	resp := s.HandleMessage(context.Background(), json.RawMessage(req))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func newResourceServer(t *testing.T, cfg *config.Config) *mcpserver.MCPServer {
	t.Helper()
	sc := tooltest.NewServerContext(t, cfg, nil)
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterResources(s, sc))
	return s
}

func TestSettingsResource(t *testing.T) {
	cfg := tooltest.Config()
	cfg.LLM.Provider = config.ProviderGemini
	cfg.LLM.GeminiModel = "gemini-2.5-flash"
	cfg.Weather.APIKey = "qweather-key"

	out := readResource(t, newResourceServer(t, cfg), SettingsURI)
	require.Contains(t, out, "result", out)

	contents := out["result"].(map[string]any)["contents"].([]any)
	require.Len(t, contents, 1)
	first := contents[0].(map[string]any)
	assert.Equal(t, SettingsURI, first["uri"])
	assert.Equal(t, "application/json", first["mimeType"])

	var settings map[string]any
	require.NoError(t, json.Unmarshal([]byte(first["text"].(string)), &settings))
	assert.Equal(t, "gemini", settings["provider"])
	assert.Equal(t, "gemini-2.5-flash", settings["model"])
	assert.Equal(t, "Asia/Shanghai", settings["calendarTimezone"])
	assert.Equal(t, map[string]any{"maps": false, "weather": true, "search": false}, settings["integrations"])
}

func TestProfileResourceWithoutAuthorization(t *testing.T) {
	out := readResource(t, newResourceServer(t, nil), ProfileURI)
	assert.NotContains(t, out, "result")
	require.Contains(t, out, "error")
}
