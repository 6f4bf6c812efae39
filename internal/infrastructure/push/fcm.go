// Package push implements the push provider boundary on Firebase Cloud
// Messaging.
package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"dailyspend/internal/domain/notification"
)

// Client implements notification.Messenger using Firebase Cloud Messaging.
type Client struct {
	msgClient *messaging.Client
}

var _ notification.Messenger = (*Client)(nil)

// NewClient initializes a Firebase app and returns an FCM client.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Client{msgClient: msgClient}, nil
}

// Send delivers a notification message to a single device token. A token
// Firebase reports as unregistered or malformed maps to
// notification.ErrUnregisteredToken so callers can classify it as permanent.
func (c *Client) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	_, err := c.msgClient.Send(ctx, msg)
	return c.classify(err)
}

// SendProbe delivers a silent data-only message (no OS notification) used to
// check whether a token is still registered.
func (c *Client) SendProbe(ctx context.Context, token string) error {
	msg := &messaging.Message{
		Token: token,
		Data:  map[string]string{"type": "probe"},
	}
	_, err := c.msgClient.Send(ctx, msg)
	return c.classify(err)
}

func (c *Client) classify(err error) error {
	if err == nil {
		return nil
	}
	if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
		return fmt.Errorf("%w: %v", notification.ErrUnregisteredToken, err)
	}
	return fmt.Errorf("failed to send FCM message: %w", err)
}
