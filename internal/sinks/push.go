package sinks

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// pushMessenger is the slice of the FCM messaging client the sink uses.
type pushMessenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSink delivers notifications through Firebase Cloud Messaging.
// Recipients without a registered device token are skipped silently.
type PushSink struct {
	client pushMessenger
}

// NewPushSink initializes the Firebase app and its messaging client. When
// credentialsFile is empty the SDK falls back to GOOGLE_APPLICATION_CREDENTIALS
// or ambient default credentials.
func NewPushSink(ctx context.Context, credentialsFile string) (*PushSink, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize messaging client: %w", err)
	}

	return &PushSink{client: client}, nil
}

func (s *PushSink) Name() string { return "push" }

func (s *PushSink) Deliver(ctx context.Context, d Delivery) error {
	if d.PushToken == "" {
		return nil
	}

	_, err := s.client.Send(ctx, &messaging.Message{
		Token: d.PushToken,
		Notification: &messaging.Notification{
			Title: d.Title,
			Body:  d.Body,
		},
		Data: d.Data,
	})
	return err
}
