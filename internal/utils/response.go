package utils

import (
	"net/http"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
	})
}

func SuccessWithData(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, models.Response{
		Error: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	Error(c, http.StatusBadRequest, message)
}

func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(c, http.StatusUnauthorized, message)
}
