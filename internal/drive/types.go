package drive

import "time"

// DocumentMimeType identifies Google Docs files.
const DocumentMimeType = "application/vnd.google-apps.document"

// FileInfo represents metadata about a Drive file.
type FileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	CreatedTime  time.Time `json:"createdTime"`
	ModifiedTime time.Time `json:"modifiedTime"`
	WebViewLink  string    `json:"webViewLink,omitempty"`
}
