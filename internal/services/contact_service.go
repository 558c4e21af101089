package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/mailer"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/MarawanEldeib/portfolio-website-sub000/pkg/validator"
	"github.com/sirupsen/logrus"
)

type ContactService struct {
	mailer        mailer.Mailer
	from          string
	to            []string
	subjectPrefix string
	sendTimeout   time.Duration
}

func NewContactService(m mailer.Mailer, from, to, subjectPrefix string, sendTimeout time.Duration) *ContactService {
	return &ContactService{
		mailer:        m,
		from:          from,
		to:            splitRecipients(to),
		subjectPrefix: subjectPrefix,
		sendTimeout:   sendTimeout,
	}
}

// Submit validates a submission and relays it by email. Validation failures
// are *validator.Error; anything after validation is ErrDelivery.
func (s *ContactService) Submit(ctx context.Context, sub *models.ContactSubmission) error {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Message = strings.TrimSpace(sub.Message)
	sub.URL = strings.TrimSpace(sub.URL)

	if err := Validate(sub); err != nil {
		return err
	}

	html, err := mailer.RenderContact(sub)
	if err != nil {
		return fmt.Errorf("%w: render: %v", ErrDelivery, err)
	}

	msg := &mailer.Message{
		From:    s.from,
		To:      s.to,
		Subject: fmt.Sprintf("%s from %s", s.subjectPrefix, sub.Name),
		HTML:    html,
		ReplyTo: sub.Email,
	}
	for _, a := range sub.Attachments {
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"reply_to":    sub.Email,
			"attachments": len(msg.Attachments),
		}).Error("failed to send contact email")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	logrus.WithField("attachments", len(msg.Attachments)).Info("contact email sent")
	return nil
}

// Validate applies the submission rules in order: required fields, email,
// attachments, then the optional URL.
func Validate(sub *models.ContactSubmission) error {
	if err := validator.ValidateStruct(sub); err != nil {
		return err
	}

	if err := validator.ValidateEmail(sub.Email); err != nil {
		return err
	}

	if len(sub.Attachments) > 0 {
		files := make([]validator.FileInput, 0, len(sub.Attachments))
		for _, a := range sub.Attachments {
			files = append(files, validator.FileInput{
				Name:        a.Filename,
				Size:        a.Size,
				ContentType: a.ContentType,
				Head:        a.Content,
			})
		}
		if err := validator.ValidateFiles(files); err != nil {
			return err
		}
	}

	if sub.URL != "" {
		if err := validator.ValidateURL(sub.URL); err != nil {
			return err
		}
	}

	return nil
}
