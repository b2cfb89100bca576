// Package cmd implements the command-line interface for assistant.
//
// This package provides the following commands:
//   - chat: Talk to the assistant in an interactive loop (default)
//   - auth: Authorize or revoke access to the Google account
//   - serve: Expose the assistant's tools as an MCP stdio server
//   - history: Browse stored conversations
//   - generate-docs: Generate markdown documentation for all tools
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
