package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "me@example.com",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestEmailMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     EmailMessage
		wantErr string
	}{
		{name: "valid", msg: EmailMessage{To: []string{"a@example.com"}, Subject: "Hi"}},
		{name: "no recipients", msg: EmailMessage{Subject: "Hi"}, wantErr: "recipient"},
		{name: "blank recipients", msg: EmailMessage{To: []string{" ", ""}, Subject: "Hi"}, wantErr: "recipient"},
		{name: "no subject", msg: EmailMessage{To: []string{"a@example.com"}, Subject: "  "}, wantErr: "subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuildMIME(t *testing.T) {
	raw, err := BuildMIME(&EmailMessage{
		From:    "me@example.com",
		To:      []string{"alice@example.com", " bob@example.com "},
		Cc:      []string{"carol@example.com"},
		Subject: "Quarterly report",
		Body:    "Numbers attached.",
	})
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, "From: <me@example.com>")
	assert.Contains(t, text, "alice@example.com")
	assert.Contains(t, text, "bob@example.com")
	assert.Contains(t, text, "Cc: <carol@example.com>")
	assert.Contains(t, text, "Subject: Quarterly report")
	assert.Contains(t, text, "text/plain")
	assert.Contains(t, text, "Numbers attached.")
	assert.NotContains(t, text, "Bcc:")
}

func TestBuildMIME_InvalidAddress(t *testing.T) {
	_, err := BuildMIME(&EmailMessage{To: []string{"not an address"}, Subject: "Hi"})
	assert.ErrorContains(t, err, "invalid recipient")
}

func TestSendEmail(t *testing.T) {
	var sent gmail.Message
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages/send"), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &sent))
		_ = json.NewEncoder(w).Encode(gmail.Message{Id: "msg-1"})
	})

	id, err := c.SendEmail(context.Background(), &EmailMessage{
		To:      []string{"alice@example.com"},
		Subject: "Lunch",
		Body:    "Noon?",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	raw, err := base64.URLEncoding.DecodeString(sent.Raw)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "From: <me@example.com>")
	assert.Contains(t, string(raw), "Subject: Lunch")
}

func TestSendEmail_ValidationSkipsAPI(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	_, err := c.SendEmail(context.Background(), &EmailMessage{Subject: "Lunch"})
	assert.ErrorContains(t, err, "recipient")
}

func TestSendEmail_VendorError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"insufficient scope"}}`))
	})

	_, err := c.SendEmail(context.Background(), &EmailMessage{To: []string{"a@example.com"}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
	assert.Contains(t, err.Error(), "insufficient scope")
}

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestSearchEmails(t *testing.T) {
	internal := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC).UnixMilli()

	messages := map[string]*gmail.Message{
		"m1": {
			Id:           "m1",
			InternalDate: internal,
			Payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Invoice"},
					{Name: "From", Value: "Billing <billing@example.com>"},
				},
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>html</p>")}},
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain text body")}},
				},
			},
		},
		"m2": {
			Id:           "m2",
			InternalDate: internal,
			Payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Headers:  []*gmail.MessagePartHeader{{Name: "subject", Value: "Single part"}},
				Body:     &gmail.MessagePartBody{Data: b64("only body")},
			},
		},
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			assert.Equal(t, "from:billing", r.URL.Query().Get("q"))
			assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
			_ = json.NewEncoder(w).Encode(gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "m1"}, {Id: "m2"}},
			})
		case strings.Contains(r.URL.Path, "/users/me/messages/"):
			id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			assert.Equal(t, "full", r.URL.Query().Get("format"))
			_ = json.NewEncoder(w).Encode(messages[id])
		default:
			http.NotFound(w, r)
		}
	})

	emails, err := c.SearchEmails(context.Background(), "from:billing", 5)
	require.NoError(t, err)
	require.Len(t, emails, 2)

	wantDate := time.UnixMilli(internal).Local().Format(DateLayout)
	assert.Equal(t, EmailSummary{
		ID: "m1", Subject: "Invoice", Sender: "Billing <billing@example.com>",
		Body: "plain text body", Date: wantDate,
	}, emails[0])
	assert.Equal(t, "Single part", emails[1].Subject)
	assert.Equal(t, "only body", emails[1].Body)
}

func TestSearchEmails_NoMatches(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultSizeEstimate":0}`))
	})

	emails, err := c.SearchEmails(context.Background(), "nothing", 0)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestMessageBody_NestedParts(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("nested?"))}},
			},
		}},
	}
	assert.Equal(t, "nested?", messageBody(payload))
	assert.Empty(t, messageBody(nil))
}
