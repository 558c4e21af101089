package routes

import (
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/config"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/handlers"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/middleware"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dependencies are the long-lived components the routes are served by.
type Dependencies struct {
	VisitService   *services.VisitService
	ContactService *services.ContactService
	DigestService  *services.DigestService
	ContactLimiter middleware.Limiter
	VisitThrottler *middleware.Throttler
}

func Setup(cfg *config.Config, deps *Dependencies) *gin.Engine {
	router := gin.New()

	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logrus.WithError(err).Warn("invalid trusted proxies, trusting none")
		router.SetTrustedProxies(nil)
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.LoggerMiddleware())
	router.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Guard(cfg.Guard.BlockedUserAgents, rejectTraversal(cfg)))

	contactHandler := handlers.NewContactHandler(deps.ContactService, cfg.Contact.MaxBodySize)
	visitHandler := handlers.NewVisitHandler(deps.VisitService)
	digestHandler := handlers.NewDigestHandler(deps.DigestService)

	router.POST("/contact", middleware.RateLimit(deps.ContactLimiter), contactHandler.Submit)

	trackVisit := []gin.HandlerFunc{}
	if deps.VisitThrottler != nil {
		trackVisit = append(trackVisit, middleware.Throttle(deps.VisitThrottler))
	}
	trackVisit = append(trackVisit, visitHandler.TrackVisit)
	router.POST("/track-visit", trackVisit...)

	router.GET("/send-daily-digest", middleware.SecretAuth(cfg.Digest.Secret), digestHandler.SendDailyDigest)

	router.GET("/health", func(c *gin.Context) {
		utils.Success(c, "ok")
	})

	return router
}

func rejectTraversal(cfg *config.Config) bool {
	return cfg.Guard.RejectPathTraversal == nil || *cfg.Guard.RejectPathTraversal
}
