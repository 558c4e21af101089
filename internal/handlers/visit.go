package handlers

import (
	"errors"
	"net/http"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	"github.com/MarawanEldeib/portfolio-website-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type VisitHandler struct {
	visitService *services.VisitService
}

func NewVisitHandler(visitService *services.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

func (h *VisitHandler) TrackVisit(c *gin.Context) {
	var req models.TrackVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			utils.BadRequest(c, verr.Message)
			return
		}
		utils.BadRequest(c, "")
		return
	}

	if err := h.visitService.RecordVisit(c.Request.Context(), req.Pathname, req.Referrer); err != nil {
		logrus.WithError(err).WithField("pathname", req.Pathname).Error("failed to record visit")
		utils.Error(c, http.StatusInternalServerError, "Failed to track visit")
		return
	}

	utils.Success(c, "")
}
