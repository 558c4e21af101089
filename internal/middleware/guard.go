package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Guard rejects requests from denylisted user agents and requests whose path
// walks up the tree. Agent matching is a case-insensitive substring test.
func Guard(blockedAgents []string, rejectTraversal bool) gin.HandlerFunc {
	agents := make([]string, 0, len(blockedAgents))
	for _, a := range blockedAgents {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			agents = append(agents, a)
		}
	}

	return func(c *gin.Context) {
		ua := strings.ToLower(c.Request.UserAgent())
		for _, a := range agents {
			if strings.Contains(ua, a) {
				logrus.WithFields(logrus.Fields{
					"user_agent": c.Request.UserAgent(),
					"client":     utils.ClientKey(c),
				}).Warn("blocked user agent")
				utils.Error(c, http.StatusForbidden, "Forbidden")
				c.Abort()
				return
			}
		}

		if rejectTraversal && hasDotDotSegment(c.Request.URL) {
			utils.BadRequest(c, "Invalid request path")
			c.Abort()
			return
		}

		c.Next()
	}
}

func hasDotDotSegment(u *url.URL) bool {
	path := strings.ReplaceAll(u.EscapedPath(), "%2e", ".")
	path = strings.ReplaceAll(path, "%2E", ".")
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
