package docs

import (
	"context"
	"errors"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// DefaultTitle names documents created without a title.
const DefaultTitle = "New Document"

// Document identifies a created document.
type Document struct {
	ID    string
	Title string
	URL   string
}

// DocumentURL returns the editor link for a document id.
func DocumentURL(id string) string {
	return "https://docs.google.com/document/d/" + id + "/edit"
}

// Client wraps the Google Docs service.
type Client struct {
	svc *docs.Service
}

func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreateDocument creates a document and inserts content at its start.
// The insert is skipped when content is empty.
func (c *Client) CreateDocument(ctx context.Context, title, content string) (*Document, error) {
	if title == "" {
		title = DefaultTitle
	}

	created, err := c.svc.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	doc := &Document{ID: created.DocumentId, Title: created.Title, URL: DocumentURL(created.DocumentId)}
	if content == "" {
		return doc, nil
	}

	_, err = c.svc.Documents.BatchUpdate(created.DocumentId, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: 1},
				Text:     content,
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return doc, fmt.Errorf("document %s created but inserting content failed: %w", created.DocumentId, err)
	}
	return doc, nil
}

// GetDocumentText fetches a document with all tabs and returns its text.
func (c *Client) GetDocumentText(ctx context.Context, documentID string) (string, error) {
	if documentID == "" {
		return "", errors.New("documentID is required")
	}

	doc, err := c.svc.Documents.Get(documentID).IncludeTabsContent(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get document %s: %w", documentID, err)
	}
	return PlainText(doc), nil
}
