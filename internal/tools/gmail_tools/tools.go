package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/gmail"
	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools/common"
)

// Maximum number of messages searchEmail fetches.
const maxSearchResults = 50

// RegisterGmailTools registers sendEmail and searchEmail.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendEmailTool := mcp.NewTool("sendEmail",
		mcp.WithDescription("Send a plain-text email from the user's Gmail account"),
		mcp.WithArray("to_list",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Recipient email addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("message_text",
			mcp.Required(),
			mcp.Description("Plain-text email body"),
		),
		mcp.WithArray("cc",
			mcp.WithStringItems(),
			mcp.Description("Optional CC email addresses"),
		),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(sendEmailTool, common.InstrumentedToolHandlerWithService("sendEmail",
		instrumentation.ServiceGmail, "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	searchEmailTool := mcp.NewTool("searchEmail",
		mcp.WithDescription("Search the user's mailbox with Gmail search syntax and return matching messages"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query, e.g. 'from:alice@example.com is:unread newer_than:7d'"),
		),
		mcp.WithNumber("max_results",
			mcp.DefaultNumber(gmail.DefaultSearchLimit),
			mcp.Min(1),
			mcp.Max(maxSearchResults),
			mcp.Description("Maximum number of messages to return"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(searchEmailTool, common.InstrumentedToolHandlerWithService("searchEmail",
		instrumentation.ServiceGmail, "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmail(ctx, request, sc)
		}))

	return nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to, err := common.ParseStringOrArray(args["to_list"], "to_list")
	if err != nil {
		return common.ErrorResult(err), nil
	}
	cc, err := common.OptionalStringList(args["cc"], "cc")
	if err != nil {
		return common.ErrorResult(err), nil
	}

	msg := &gmail.EmailMessage{
		To:      to,
		Cc:      cc,
		Subject: request.GetString("subject", ""),
		Body:    request.GetString("message_text", ""),
	}
	if err := msg.Validate(); err != nil {
		return common.ErrorResult(err), nil
	}

	client, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	if _, err := client.SendEmail(ctx, msg); err != nil {
		return common.ErrorResult(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Sent an email to %s", strings.Join(to, ", "))), nil
}

func handleSearchEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return common.ErrorResult(err), nil
	}
	limit := common.ClampInt(request.GetInt("max_results", gmail.DefaultSearchLimit), gmail.DefaultSearchLimit, 1, maxSearchResults)

	client, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	emails, err := client.SearchEmails(ctx, query, int64(limit))
	if err != nil {
		return common.ErrorResult(err), nil
	}
	if len(emails) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No emails found matching query: %s", query)), nil
	}
	return common.JSONResult(emails)
}
