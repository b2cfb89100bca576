package drive_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/drive"
	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
)

const maxListResults = 100

// RegisterDriveTools registers listDriveDocuments.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("listDriveDocuments",
		mcp.WithDescription("List Google Docs created by the assistant, newest first"),
		mcp.WithString("name_contains",
			mcp.Description("Only return documents whose title contains this text"),
		),
		mcp.WithNumber("max_results",
			mcp.DefaultNumber(drive.DefaultListLimit),
			mcp.Min(1),
			mcp.Max(maxListResults),
			mcp.Description("Maximum number of documents to return"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listTool, common.InstrumentedToolHandlerWithService("listDriveDocuments",
		instrumentation.ServiceDrive, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDocuments(ctx, request, sc)
		}))

	return nil
}

func handleListDocuments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	nameContains := strings.TrimSpace(request.GetString("name_contains", ""))
	limit := common.ClampInt(request.GetInt("max_results", drive.DefaultListLimit), drive.DefaultListLimit, 1, maxListResults)

	client, err := sc.DriveClient(ctx)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	files, err := client.ListDocuments(ctx, nameContains, int64(limit))
	if err != nil {
		return common.ErrorResult(err), nil
	}

	if len(files) == 0 {
		if nameContains != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No documents found matching '%s'.", nameContains)), nil
		}
		return mcp.NewToolResultText("No documents found."), nil
	}

	loc := sc.Location()
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d documents:\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&b, "\n%d. %s\n   ID: %s\n", i+1, f.Name, f.ID)
		if !f.ModifiedTime.IsZero() {
			fmt.Fprintf(&b, "   Modified: %s\n", f.ModifiedTime.In(loc).Format("2006-01-02 15:04"))
		}
		if f.WebViewLink != "" {
			fmt.Fprintf(&b, "   Link: %s\n", f.WebViewLink)
		}
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}
