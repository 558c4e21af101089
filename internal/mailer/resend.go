package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ResendMailer sends through the Resend API.
type ResendMailer struct {
	client *resend.Client
}

// ProviderError carries the provider's rejection. It is for logs only and
// must not be shown to end users.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return "mail provider rejected the email: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewResendMailer(baseURL, apiKey string, timeout time.Duration) (*ResendMailer, error) {
	client := resend.NewCustomClient(&http.Client{Timeout: timeout}, apiKey)

	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid mail.base_url: %w", err)
		}
		client.BaseURL = u
	}

	return &ResendMailer{client: client}, nil
}

func (m *ResendMailer) Send(ctx context.Context, msg *Message) error {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	sent, err := m.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return &ProviderError{Message: err.Error(), Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"email_id": sent.Id,
		"subject":  msg.Subject,
	}).Debug("email accepted by provider")

	return nil
}
