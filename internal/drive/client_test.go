package drive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func TestBuildDocumentQuery(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "no filter",
			expected: "mimeType='application/vnd.google-apps.document' and trashed=false",
		},
		{
			name:     "name filter",
			in:       " Study Plan ",
			expected: "mimeType='application/vnd.google-apps.document' and trashed=false and name contains 'Study Plan'",
		},
		{
			name:     "quotes are escaped",
			in:       `Bob's \notes`,
			expected: `mimeType='application/vnd.google-apps.document' and trashed=false and name contains 'Bob\'s \\notes'`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildDocumentQuery(tt.in))
		})
	}
}

func TestListDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/files"), r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, buildDocumentQuery("plan"), q.Get("q"))
		assert.Equal(t, "modifiedTime desc", q.Get("orderBy"))
		assert.Equal(t, "20", q.Get("pageSize"))
		_, _ = w.Write([]byte(`{"files":[
			{"id":"d1","name":"Go Study Plan","mimeType":"application/vnd.google-apps.document",
			 "createdTime":"2025-03-14T10:00:00Z","modifiedTime":"2025-03-15T08:30:00Z",
			 "webViewLink":"https://docs.google.com/document/d/d1/edit"}
		]}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	files, err := c.ListDocuments(context.Background(), "plan", 0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Go Study Plan", files[0].Name)
	assert.Equal(t, "https://docs.google.com/document/d/d1/edit", files[0].WebViewLink)
	assert.True(t, files[0].ModifiedTime.Equal(time.Date(2025, 3, 15, 8, 30, 0, 0, time.UTC)))
}

func TestConvertToFileInfo_MinimalData(t *testing.T) {
	info := convertToFileInfo(&drive.File{Id: "x", Name: "n"})
	assert.Equal(t, "x", info.ID)
	assert.True(t, info.CreatedTime.IsZero())
}
