package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DefaultSearchLimit caps SearchEmails when the caller passes no limit.
const DefaultSearchLimit = 10

// Client wraps the Gmail Users service for the authorized account.
type Client struct {
	svc  *gmail.UsersService
	from string
}

// NewClient creates a Gmail client. from is the address placed in the From
// header of outgoing mail.
func NewClient(ctx context.Context, from string, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users, from: from}, nil
}

// From returns the sender address used for outgoing mail.
func (c *Client) From() string {
	return c.from
}
