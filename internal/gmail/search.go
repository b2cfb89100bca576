package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// DateLayout formats EmailSummary.Date.
const DateLayout = "2006-01-02 15:04:05"

// EmailSummary is the condensed view of a message returned by searches.
type EmailSummary struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Body    string `json:"body"`
	Date    string `json:"date"`
}

// SearchEmails lists messages matching query and fetches each in full.
// Results keep the order the API returns them in (newest first).
func (c *Client) SearchEmails(ctx context.Context, query string, maxResults int64) ([]EmailSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultSearchLimit
	}

	res, err := c.svc.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	emails := make([]EmailSummary, 0, len(res.Messages))
	for _, ref := range res.Messages {
		msg, err := c.svc.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		emails = append(emails, summarize(msg))
	}
	return emails, nil
}

func summarize(msg *gmail.Message) EmailSummary {
	return EmailSummary{
		ID:      msg.Id,
		Subject: HeaderValue(msg, "Subject"),
		Sender:  HeaderValue(msg, "From"),
		Body:    messageBody(msg.Payload),
		Date:    time.UnixMilli(msg.InternalDate).Local().Format(DateLayout),
	}
}

// HeaderValue extracts a top-level header value from a Gmail message.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// messageBody returns the first text/plain part of a multipart message, or
// the payload body of a single-part one.
func messageBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if len(payload.Parts) == 0 {
		return decodeBody(payload.Body)
	}

	var body string
	walkParts(payload, func(part *gmail.MessagePart) bool {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			body = decodeBody(part.Body)
			return false
		}
		return true
	})
	return body
}

// walkParts visits part and its descendants depth first until fn returns false.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart) bool) bool {
	if part == nil {
		return true
	}
	if !fn(part) {
		return false
	}
	for _, sub := range part.Parts {
		if !walkParts(sub, fn) {
			return false
		}
	}
	return true
}

func decodeBody(b *gmail.MessagePartBody) string {
	if b == nil || b.Data == "" {
		return ""
	}
	data, err := base64.URLEncoding.DecodeString(b.Data)
	if err != nil {
		// Gmail omits padding on some payloads.
		if data, err = base64.RawURLEncoding.DecodeString(b.Data); err != nil {
			return ""
		}
	}
	return string(data)
}
