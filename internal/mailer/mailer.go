package mailer

import (
	"context"
	"fmt"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/config"
)

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

type Message struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	ReplyTo     string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	Content  []byte
}

// New builds the mailer selected by mail.provider.
func New(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Provider {
	case "resend":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("mail.api_key is required for the resend provider")
		}
		return NewResendMailer(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	case "log":
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
