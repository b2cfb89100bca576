// Package docs_tools provides MCP tools for creating and reading Google Docs.
//
// Documents are created under the drive.file scope, so the assistant can only
// see documents it created itself. Study plans are written through
// createDriveDocument.
package docs_tools
