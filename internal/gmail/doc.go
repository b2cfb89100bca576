// Package gmail sends and searches mail through the Gmail API.
//
// Outgoing messages are rendered as RFC 5322 MIME by go-mail and handed to
// users.messages.send as a base64url raw payload. Searches take the same
// query syntax as the Gmail search box.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, "me@example.com", option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//
//	id, err := client.SendEmail(ctx, &gmail.EmailMessage{
//	    To:      []string{"recipient@example.com"},
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	})
//
//	emails, err := client.SearchEmails(ctx, "is:unread newer_than:1d", 10)
package gmail
