package docs_tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
)

// documentURLPattern extracts the id from a docs.google.com document link.
var documentURLPattern = regexp.MustCompile(`/document/d/([A-Za-z0-9_-]+)`)

// RegisterDocsTools registers createDriveDocument and readDriveDocument.
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createTool := mcp.NewTool("createDriveDocument",
		mcp.WithDescription("Create a Google Doc in the user's Drive with the given title and plain-text content"),
		mcp.WithString("documentName",
			mcp.Required(),
			mcp.Description("Document title"),
		),
		mcp.WithString("documentContent",
			mcp.Description("Plain-text body of the document"),
		),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService("createDriveDocument",
		instrumentation.ServiceDocs, "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDocument(ctx, request, sc)
		}))

	readTool := mcp.NewTool("readDriveDocument",
		mcp.WithDescription("Read the text of a Google Doc created by the assistant"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("Document ID or its docs.google.com link"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(readTool, common.InstrumentedToolHandlerWithService("readDriveDocument",
		instrumentation.ServiceDocs, "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadDocument(ctx, request, sc)
		}))

	return nil
}

func handleCreateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(request.GetString("documentName", ""))
	if title == "" {
		return common.ErrorResultf("documentName is required"), nil
	}

	client, err := sc.DocsClient(ctx)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	doc, err := client.CreateDocument(ctx, title, request.GetString("documentContent", ""))
	if err != nil {
		if doc != nil {
			return common.ErrorResultf("%v. The empty document is at %s", err, doc.URL), nil
		}
		return common.ErrorResult(err), nil
	}
	return mcp.NewToolResultText("Document created: " + doc.URL), nil
}

func handleReadDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	id := ParseDocumentID(request.GetString("documentId", ""))
	if id == "" {
		return common.ErrorResultf("documentId is required"), nil
	}

	client, err := sc.DocsClient(ctx)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	text, err := client.GetDocumentText(ctx, id)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Document %s is empty.", id)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// ParseDocumentID accepts a bare id or a document link.
func ParseDocumentID(s string) string {
	s = strings.TrimSpace(s)
	if m := documentURLPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
