package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// AsynqMailer queues verification emails for background delivery.
type AsynqMailer struct {
	client  *asynq.Client
	baseURL string
}

// NewAsynqMailer constructs a mailer over the Asynq client. baseURL is
// the public address verification links point at.
func NewAsynqMailer(client *asynq.Client, baseURL string) *AsynqMailer {
	return &AsynqMailer{client: client, baseURL: baseURL}
}

// SendVerificationEmail enqueues the verification email for the address.
func (m *AsynqMailer) SendVerificationEmail(ctx context.Context, email, code string) error {
	task, err := NewSendEmailTask(SendEmailPayload{
		To:      email,
		Subject: "Verify your email address",
		Body:    fmt.Sprintf("Confirm your account: %s/auth/verify-email?code=%s", m.baseURL, code),
	})
	if err != nil {
		return err
	}
	if _, err := m.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		return fmt.Errorf("jobs: enqueue verification email: %w", err)
	}
	return nil
}
