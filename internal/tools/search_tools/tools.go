package search_tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
	"github.com/ykykj/assistant/internal/websearch"
)

const maxResultsLimit = 10

// RegisterSearchTools registers webSearch.
func RegisterSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool("webSearch",
		mcp.WithDescription("Search the web for current information, news and facts"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("max_results",
			mcp.DefaultNumber(websearch.DefaultMaxResults),
			mcp.Min(1),
			mcp.Max(maxResultsLimit),
			mcp.Description("Maximum number of results"),
		),
		mcp.WithString("topic",
			mcp.DefaultString(websearch.TopicGeneral),
			mcp.Enum(websearch.TopicGeneral, websearch.TopicNews),
			mcp.Description("Use 'news' for recent events"),
		),
		mcp.WithBoolean("include_raw_content",
			mcp.Description("Include the full page text when available"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService("webSearch",
		instrumentation.ServiceSearch, "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWebSearch(ctx, request, sc)
		}))
	return nil
}

func handleWebSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	searcher, err := sc.Searcher(ctx)
	if errors.Is(err, websearch.ErrNotConfigured) {
		return mcp.NewToolResultError(websearch.NotConfiguredMessage), nil
	}
	if err != nil {
		return mcp.NewToolResultError("Error performing web search: " + err.Error()), nil
	}

	results, err := searcher.Search(ctx, websearch.Query{
		Text:              request.GetString("query", ""),
		MaxResults:        common.ClampInt(request.GetInt("max_results", websearch.DefaultMaxResults), websearch.DefaultMaxResults, 1, maxResultsLimit),
		Topic:             request.GetString("topic", websearch.TopicGeneral),
		IncludeRawContent: request.GetBool("include_raw_content", false),
	})
	if err != nil {
		return mcp.NewToolResultError("Error performing web search: " + err.Error()), nil
	}
	return mcp.NewToolResultText(websearch.Format(results)), nil
}
