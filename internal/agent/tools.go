package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sashabaranov/go-openai"
)

var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// OpenAITools converts the tools registered on srv into chat completion tool
// definitions, sorted by name.
func OpenAITools(srv *mcpserver.MCPServer) []openai.Tool {
	registered := srv.ListTools()
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		t := registered[name].Tool
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  inputSchema(t),
			},
		})
	}
	return tools
}

func inputSchema(t mcp.Tool) json.RawMessage {
	if len(t.RawInputSchema) > 0 {
		return t.RawInputSchema
	}
	if t.InputSchema.Type == "" {
		return emptyObjectSchema
	}

	schema := map[string]any{"type": t.InputSchema.Type}
	props := t.InputSchema.Properties
	if props == nil {
		props = map[string]any{}
	}
	schema["properties"] = props
	if len(t.InputSchema.Required) > 0 {
		schema["required"] = t.InputSchema.Required
	}
	if len(t.InputSchema.Defs) > 0 {
		schema["$defs"] = t.InputSchema.Defs
	}

	b, err := json.Marshal(schema)
	if err != nil {
		return emptyObjectSchema
	}
	return b
}

// callTool runs one tool call and returns the text handed back to the model.
// Failures are reported as text so the model can react to them.
func (a *Agent) callTool(ctx context.Context, call openai.ToolCall) string {
	name := call.Function.Name
	st := a.tools.GetTool(name)
	if st == nil {
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return fmt.Sprintf("Error: could not parse arguments for tool %s: %v", name, err)
		}
	}

	res, err := st.Handler(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		return "Error: " + err.Error()
	}

	text := resultText(res)
	if text == "" && res != nil && res.IsError {
		return fmt.Sprintf("Error: tool %s failed", name)
	}
	if text == "" {
		text = "(no output)"
	}
	return text
}

func resultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var parts []string
	for _, c := range res.Content {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		}
	}
	return strings.Join(parts, "\n")
}
