package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DefaultListLimit caps ListDocuments when the caller passes no limit.
const DefaultListLimit = 20

// Client wraps the Google Drive service.
type Client struct {
	service *drive.Service
}

func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: service}, nil
}

// ListDocuments lists Google Docs that are not trashed, most recently
// modified first. nameContains optionally filters by title.
func (c *Client) ListDocuments(ctx context.Context, nameContains string, maxResults int64) ([]*FileInfo, error) {
	if maxResults <= 0 {
		maxResults = DefaultListLimit
	}

	fileList, err := c.service.Files.List().
		Context(ctx).
		Q(buildDocumentQuery(nameContains)).
		OrderBy("modifiedTime desc").
		PageSize(maxResults).
		Fields("files(id, name, mimeType, createdTime, modifiedTime, webViewLink)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, nil
}

// buildDocumentQuery composes the Drive search expression.
func buildDocumentQuery(nameContains string) string {
	q := fmt.Sprintf("mimeType='%s' and trashed=false", DocumentMimeType)
	if name := strings.TrimSpace(nameContains); name != "" {
		q += fmt.Sprintf(" and name contains '%s'", escapeQueryValue(name))
	}
	return q
}

// escapeQueryValue escapes backslashes and single quotes for Drive queries.
func escapeQueryValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		WebViewLink: f.WebViewLink,
	}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		info.CreatedTime = t
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		info.ModifiedTime = t
	}
	return info
}
