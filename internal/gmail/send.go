package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"
	gmail "google.golang.org/api/gmail/v1"
)

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From    string
	To      []string
	Cc      []string
	Subject string
	Body    string
}

// Validate checks that the message can be delivered.
func (m *EmailMessage) Validate() error {
	if len(cleanAddresses(m.To)) == 0 {
		return errors.New("at least one recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("subject is required")
	}
	return nil
}

// BuildMIME renders msg as a plain-text RFC 5322 message.
func BuildMIME(msg *EmailMessage) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	m := mail.NewMsg(mail.WithNoDefaultUserAgent())
	if msg.From != "" {
		if err := m.From(msg.From); err != nil {
			return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
		}
	}
	if err := m.To(cleanAddresses(msg.To)...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if cc := cleanAddresses(msg.Cc); len(cc) > 0 {
		if err := m.Cc(cc...); err != nil {
			return nil, fmt.Errorf("invalid cc recipient: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render message: %w", err)
	}
	return buf.Bytes(), nil
}

// SendEmail sends msg and returns the Gmail message id. An empty From is
// filled with the client's sender address.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if msg.From == "" {
		msg.From = c.from
	}

	raw, err := BuildMIME(msg)
	if err != nil {
		return "", err
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// cleanAddresses trims entries and drops blanks.
func cleanAddresses(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
