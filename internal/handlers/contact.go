package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	"github.com/MarawanEldeib/portfolio-website-sub000/pkg/validator"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ContactHandler struct {
	contactService *services.ContactService
	maxBodySize    int64
}

func NewContactHandler(contactService *services.ContactService, maxBodySize int64) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		maxBodySize:    maxBodySize,
	}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	if h.maxBodySize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)
	}

	var form models.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.BadRequest(c, "Request body is too large")
			return
		}
		utils.BadRequest(c, "Invalid form data")
		return
	}

	attachments, err := readAttachments(form.Files)
	if err != nil {
		logrus.WithError(err).Warn("failed to read contact attachments")
		utils.BadRequest(c, "Failed to read uploaded files")
		return
	}

	sub := &models.ContactSubmission{
		Name:        form.Name,
		Email:       form.Email,
		Message:     form.Message,
		URL:         form.URL,
		Attachments: attachments,
	}

	if err := h.contactService.Submit(c.Request.Context(), sub); err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			utils.BadRequest(c, verr.Message)
			return
		}

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("endpoint", "contact")
				hub.CaptureException(err)
			})
		}

		if errors.Is(err, services.ErrDelivery) {
			utils.Error(c, http.StatusInternalServerError, "Failed to send message. Please try again later.")
			return
		}
		utils.InternalError(c)
		return
	}

	utils.Success(c, "Message sent successfully!")
}

// readAttachments loads uploads into memory. Content is only read when the
// batch could pass validation; otherwise metadata alone is enough to reject it.
func readAttachments(files []*multipart.FileHeader) ([]models.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	readContent := len(files) <= validator.MaxFiles
	attachments := make([]models.Attachment, 0, len(files))
	for _, fh := range files {
		a := models.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}

		if readContent && fh.Size <= validator.MaxFileSize {
			content, err := readFile(fh)
			if err != nil {
				return nil, err
			}
			a.Content = content
		}

		attachments = append(attachments, a)
	}
	return attachments, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, validator.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return content, nil
}
