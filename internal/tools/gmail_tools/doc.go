// Package gmail_tools exposes sending and searching mail as MCP tools.
//
// sendEmail sends plain-text mail from the authorized account; searchEmail
// accepts Gmail search syntax, which the system prompt teaches the model to
// produce from natural-language requests.
package gmail_tools
