package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

type DigestHandler struct {
	digestService *services.DigestService
}

func NewDigestHandler(digestService *services.DigestService) *DigestHandler {
	return &DigestHandler{digestService: digestService}
}

// SendDailyDigest mails yesterday's visit summary. Authorization is checked
// by middleware.
func (h *DigestHandler) SendDailyDigest(c *gin.Context) {
	digest, err := h.digestService.SendDailyDigest(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoVisits) {
			utils.Success(c, fmt.Sprintf("No visits recorded for %s", h.digestService.ReportDate()))
			return
		}

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		utils.Error(c, http.StatusInternalServerError, "Failed to send daily digest")
		return
	}

	utils.SuccessWithData(c, "Daily digest sent", digest)
}
