package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/mailer"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/MarawanEldeib/portfolio-website-sub000/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() *models.ContactSubmission {
	return &models.ContactSubmission{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Message: "Would love to chat about a role.",
	}
}

func pdf(name string) models.Attachment {
	content := []byte("%PDF-1.7 fake body")
	return models.Attachment{
		Filename:    name,
		ContentType: validator.MimePDF,
		Size:        int64(len(content)),
		Content:     content,
	}
}

func TestContactService_Submit(t *testing.T) {
	m := &fakeMailer{}
	svc := NewContactService(m, "site@example.com", "me@example.com", "Portfolio contact", time.Second)

	sub := validSubmission()
	sub.Name = "  Jane Doe  "
	sub.URL = "https://github.com/jane"
	sub.Attachments = []models.Attachment{pdf("cv.pdf")}

	require.NoError(t, svc.Submit(context.Background(), sub))

	sent := m.messages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "site@example.com", msg.From)
	assert.Equal(t, []string{"me@example.com"}, msg.To)
	assert.Equal(t, "jane@example.com", msg.ReplyTo)
	assert.Equal(t, "Portfolio contact from Jane Doe", msg.Subject)
	assert.Contains(t, msg.HTML, "https://github.com/jane")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "cv.pdf", msg.Attachments[0].Filename)
}

func TestContactService_ValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*models.ContactSubmission)
		code   validator.Code
	}{
		{"missing name", func(s *models.ContactSubmission) { s.Name = " " }, validator.CodeRequired},
		{"missing message", func(s *models.ContactSubmission) { s.Message = "" }, validator.CodeRequired},
		{"bad email", func(s *models.ContactSubmission) { s.Email = "jane@example" }, validator.CodeInvalidFormat},
		{"bad email beats bad url", func(s *models.ContactSubmission) {
			s.Email = "nope"
			s.URL = "http://example.com"
		}, validator.CodeInvalidFormat},
		{"files before url", func(s *models.ContactSubmission) {
			bad := pdf("cv.pdf")
			bad.Content = []byte("not a pdf")
			s.Attachments = []models.Attachment{bad}
			s.URL = "http://example.com"
		}, validator.CodeContentMismatch},
		{"too many files", func(s *models.ContactSubmission) {
			for i := 0; i < 6; i++ {
				s.Attachments = append(s.Attachments, pdf("cv.pdf"))
			}
		}, validator.CodeTooManyFiles},
		{"url shortener", func(s *models.ContactSubmission) { s.URL = "https://bit.ly/x" }, validator.CodeBlockedDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMailer{}
			svc := NewContactService(m, "site@example.com", "me@example.com", "Portfolio contact", time.Second)

			sub := validSubmission()
			tt.modify(sub)

			err := svc.Submit(context.Background(), sub)
			require.Error(t, err)
			assert.Equal(t, tt.code, validator.CodeOf(err))
			assert.Empty(t, m.messages())
		})
	}
}

func TestContactService_DeliveryFailureIsWrapped(t *testing.T) {
	svc := NewContactService(&fakeMailer{err: errProvider}, "site@example.com", "me@example.com", "Portfolio contact", time.Second)

	err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.Empty(t, validator.CodeOf(err))
}

type blockingMailer struct{}

func (blockingMailer) Send(ctx context.Context, msg *mailer.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestContactService_SendTimeout(t *testing.T) {
	svc := NewContactService(blockingMailer{}, "site@example.com", "me@example.com", "Portfolio contact", 20*time.Millisecond)

	err := svc.Submit(context.Background(), validSubmission())
	assert.ErrorIs(t, err, ErrDelivery)
}
