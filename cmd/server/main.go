package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/config"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/database"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/mailer"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/middleware"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/routes"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/MarawanEldeib/portfolio-website-sub000/pkg/logger"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			SampleRate:       cfg.Sentry.SampleRate,
			AttachStacktrace: true,
		}); err != nil {
			logrus.WithError(err).Warn("sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.OpenVisitStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open visit store")
	}
	defer store.Close()

	m, err := mailer.New(cfg.Mail)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create mailer")
	}

	limiter, closeLimiter := newContactLimiter(ctx, cfg)
	defer closeLimiter()

	throttler := middleware.NewThrottler(cfg.Visits.Throttle.RatePerMinute, cfg.Visits.Throttle.Burst, 10*time.Minute)
	go throttler.Run(ctx, 5*time.Minute)

	visitService := services.NewVisitService(store, cfg.Location(), cfg.Visits.RetentionDays)
	deps := &routes.Dependencies{
		VisitService: visitService,
		ContactService: services.NewContactService(m, cfg.Mail.From, cfg.Mail.To,
			cfg.Contact.SubjectPrefix, cfg.Mail.Timeout),
		DigestService:  services.NewDigestService(visitService, m, cfg.Mail.From, cfg.Digest.To, cfg.Digest.TopN),
		ContactLimiter: limiter,
		VisitThrottler: throttler,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes.Setup(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":          server.Addr,
			"mode":          cfg.Server.Mode,
			"visits_driver": cfg.Visits.Driver,
			"rate_limiter":  cfg.Contact.RateLimit.Driver,
			"mail_provider": cfg.Mail.Provider,
		}).Info("server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}

func newContactLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, func()) {
	rl := cfg.Contact.RateLimit

	if rl.Driver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("redis unreachable, contact rate limit will fail open until it recovers")
		}
		limiter := middleware.NewRedisLimiter(client, "ratelimit:contact:", rl.MaxRequests, rl.Window)
		return limiter, func() { limiter.Close() }
	}

	limiter := middleware.NewFixedWindowLimiter(rl.MaxRequests, rl.Window)
	go limiter.Run(ctx, rl.SweepInterval)
	return limiter, func() {}
}
