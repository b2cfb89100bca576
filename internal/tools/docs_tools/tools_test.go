package docs_tools

import (
	"context"
	"net/http"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykykj/assistant/internal/docs"
	"github.com/ykykj/assistant/internal/tools/tooltest"
)

func setup(t *testing.T, handler http.HandlerFunc) *mcpserver.MCPServer {
	t.Helper()
	sc := tooltest.NewServerContext(t, nil, nil)
	client, err := docs.NewClient(context.Background(), tooltest.GoogleAPI(t, handler)...)
	require.NoError(t, err)
	sc.SetDocsClient(client)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterDocsTools(s, sc))
	return s
}

func TestCreateDriveDocument(t *testing.T) {
	var inserted bool
	s := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ":batchUpdate") {
			inserted = true
		}
		_, _ = w.Write([]byte(`{"documentId":"doc-1","title":"Go Study Plan – 2025-03-14 10:00"}`))
	})

	text, isErr := tooltest.Call(t, s, "createDriveDocument", map[string]any{
		"documentName":    "Go Study Plan – 2025-03-14 10:00",
		"documentContent": "Week 1: syntax",
	})
	require.False(t, isErr, text)
	assert.Equal(t, "Document created: https://docs.google.com/document/d/doc-1/edit", text)
	assert.True(t, inserted)
}

func TestCreateDriveDocument_InsertFailure(t *testing.T) {
	s := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ":batchUpdate") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad index"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"documentId":"doc-3"}`))
	})

	text, isErr := tooltest.Call(t, s, "createDriveDocument", map[string]any{
		"documentName":    "Notes",
		"documentContent": "body",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "https://docs.google.com/document/d/doc-3/edit")
}

func TestCreateDriveDocument_MissingName(t *testing.T) {
	s := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	text, isErr := tooltest.Call(t, s, "createDriveDocument", map[string]any{"documentName": " "})
	assert.True(t, isErr)
	assert.Equal(t, "Error: documentName is required", text)
}

func TestReadDriveDocument(t *testing.T) {
	s := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/documents/doc-1"), r.URL.Path)
		_, _ = w.Write([]byte(`{
			"documentId": "doc-1",
			"title": "Notes",
			"body": {"content": [{"paragraph": {"elements": [{"textRun": {"content": "Hello world\n"}}]}}]}
		}`))
	})

	text, isErr := tooltest.Call(t, s, "readDriveDocument", map[string]any{
		"documentId": "https://docs.google.com/document/d/doc-1/edit",
	})
	require.False(t, isErr, text)
	assert.Equal(t, "Notes\n\nHello world\n", text)
}

func TestParseDocumentID(t *testing.T) {
	assert.Equal(t, "abc_123-x", ParseDocumentID("https://docs.google.com/document/d/abc_123-x/edit?usp=sharing"))
	assert.Equal(t, "abc", ParseDocumentID(" abc "))
	assert.Equal(t, "", ParseDocumentID(""))
}
