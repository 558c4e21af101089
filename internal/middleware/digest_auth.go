package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SecretAuth admits requests carrying "Authorization: Bearer <secret>". An
// empty secret admits nobody.
func SecretAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if secret == "" || token == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			logrus.WithField("client", utils.ClientKey(c)).Warn("rejected unauthorized request")
			c.Error(services.ErrUnauthorized)
			utils.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
