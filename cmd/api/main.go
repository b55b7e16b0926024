package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/trainhub/config"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/api/handlers"
	"github.com/jordanlanch/trainhub/pkg/auth"
	"github.com/jordanlanch/trainhub/pkg/badge"
	"github.com/jordanlanch/trainhub/pkg/billing"
	"github.com/jordanlanch/trainhub/pkg/cache"
	"github.com/jordanlanch/trainhub/pkg/community"
	"github.com/jordanlanch/trainhub/pkg/database"
	"github.com/jordanlanch/trainhub/pkg/email"
	"github.com/jordanlanch/trainhub/pkg/jobs"
	"github.com/jordanlanch/trainhub/pkg/journal"
	"github.com/jordanlanch/trainhub/pkg/landing"
	"github.com/jordanlanch/trainhub/pkg/logger"
	"github.com/jordanlanch/trainhub/pkg/metrics"
	custommiddleware "github.com/jordanlanch/trainhub/pkg/middleware"
	"github.com/jordanlanch/trainhub/pkg/performance"
	"github.com/jordanlanch/trainhub/pkg/sms"
	"github.com/jordanlanch/trainhub/pkg/storage"
	"github.com/jordanlanch/trainhub/pkg/subscription"
	"github.com/jordanlanch/trainhub/pkg/training"
	"github.com/jordanlanch/trainhub/pkg/user"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize object storage
	uploader, err := storage.NewS3Uploader(context.Background(), storage.Config{
		Region:    cfg.AWSRegion,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.AWSEndpoint,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)       // login and OTP endpoints
	webhookRateLimiter := custommiddleware.NewRateLimiter(100, 20) // Stripe webhooks

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	// Prometheus metrics middleware
	e.Use(prometheusMetrics.Middleware())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{
			"http://localhost:3000",
			cfg.FrontendURL,
		},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())

	// Global rate limiting
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "TrainHub API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		if _, err := redisClient.Get(ctx, "health_check"); err != nil && !cache.IsNil(err) {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Initialize error mapper (legacy flat-422 mode by default)
	errMapper := errors.NewMapper(cfg.LegacyErrorStatus)

	// Initialize JWT blacklist and OTP store
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)
	otpStore := auth.NewOTPStore(redisClient)

	// Initialize external providers
	emailService := email.NewService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.FrontendURL)
	smsService := sms.NewService(sms.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken), cfg.TwilioFromNumber)
	billingClient := billing.NewClient(&billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})

	// Initialize services
	userService := user.NewService(db.DB, otpStore, tokenBlacklist, smsService, emailService, uploader, appLogger, cfg.JWTSecret, cfg.JWTExpirationHours)
	subscriptionService := subscription.NewService(db.DB, billingClient)
	badgeService := badge.NewService(db.DB, appLogger)
	trainingService := training.NewService(db.DB)
	journalService := journal.NewService(db.DB)
	performanceService := performance.NewService(db.DB)
	communityService := community.NewService(db.DB, uploader)
	landingService := landing.NewService(db.DB, emailService, uploader, appLogger)

	webhookHandler := billing.NewWebhookHandler(&billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	}, subscriptionService)

	// Initialize cron manager for the nightly badge aggregation
	cronManager := jobs.NewCronManager(badgeService, redisClient, prometheusMetrics, log.Default())
	if cfg.CronEnabled {
		if err := cronManager.SetupJobs(); err != nil {
			log.Fatalf("❌ Failed to setup cron jobs: %v", err)
		}
		cronManager.Start()
		log.Printf("✅ Cron jobs started successfully")
	} else {
		log.Printf("ℹ️  Cron jobs disabled (CRON_ENABLED=false)")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, errMapper)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, webhookHandler, errMapper)
	badgeHandler := handlers.NewBadgeHandler(badgeService, errMapper)
	trainingHandler := handlers.NewTrainingHandler(trainingService, errMapper)
	journalHandler := handlers.NewJournalHandler(journalService, errMapper)
	performanceHandler := handlers.NewPerformanceHandler(performanceService, errMapper)
	communityHandler := handlers.NewCommunityHandler(communityService, errMapper)
	landingHandler := handlers.NewLandingHandler(landingService, errMapper)

	v1 := e.Group("/api/v1")

	// Ping endpoint (public)
	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "pong",
		})
	})

	userAuth := custommiddleware.UserAuth(cfg.JWTSecret, tokenBlacklist)
	adminOnly := custommiddleware.RequireAdmin()

	// Authentication routes (public)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/sign-up", authHandler.SignUp, custommiddleware.ValidateUpload("avatar"))
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/forgot-password", authHandler.ForgotPassword, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/otp-verification", authHandler.VerifyOTP, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/reset-password", authHandler.ResetPassword, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/logout", authHandler.Logout, userAuth)
		authRoutes.GET("/me", authHandler.Me, userAuth)
	}

	// Public landing routes
	v1.POST("/landing/career-form", landingHandler.SubmitCareerForm)

	// Public plan listing
	v1.GET("/plans", subscriptionHandler.ListPlans)

	// Stripe webhook with higher rate limit
	v1.POST("/webhook/stripe", subscriptionHandler.Webhook, webhookRateLimiter.RateLimitMiddleware())

	// Protected routes
	protected := v1.Group("")
	protected.Use(userAuth)
	{
		// Profile
		protected.PATCH("/profile", authHandler.UpdateProfile, custommiddleware.ValidateUpload("avatar"))

		// Subscriptions
		subGroup := protected.Group("/subscriptions")
		{
			subGroup.POST("", subscriptionHandler.Subscribe)
			subGroup.POST("/filters", subscriptionHandler.Filters)
			subGroup.POST("/cancel", subscriptionHandler.Cancel)
		}

		// Badges
		badgeGroup := protected.Group("/badges")
		{
			badgeGroup.GET("/me", badgeHandler.GetMine)
			badgeGroup.GET("/users/:id", badgeHandler.GetUser)
		}

		// Training calendar
		trainingGroup := protected.Group("/trainings")
		{
			trainingGroup.POST("", trainingHandler.Create)
			trainingGroup.GET("", trainingHandler.List)
			trainingGroup.GET("/:id", trainingHandler.Get)
			trainingGroup.PATCH("/:id", trainingHandler.Update)
			trainingGroup.DELETE("/:id", trainingHandler.Delete)
			trainingGroup.POST("/:id/join", trainingHandler.Join)
			trainingGroup.POST("/:id/leave", trainingHandler.Leave)
			trainingGroup.GET("/:id/members", trainingHandler.Members)
		}

		// Journals
		journalGroup := protected.Group("/journals")
		{
			journalGroup.POST("", journalHandler.Create)
			journalGroup.GET("", journalHandler.List)
			journalGroup.GET("/:id", journalHandler.Get)
			journalGroup.PATCH("/:id", journalHandler.Update)
			journalGroup.DELETE("/:id", journalHandler.Delete)
		}

		// Performance tracking
		perfGroup := protected.Group("/performance")
		{
			perfGroup.POST("/goals", performanceHandler.CreateAttendanceGoal)
			perfGroup.GET("/goals", performanceHandler.ListAttendanceGoals)
			perfGroup.DELETE("/goals/:id", performanceHandler.DeleteAttendanceGoal)
			perfGroup.POST("/metrics", performanceHandler.RecordPhysicalPerformance)
			perfGroup.GET("/metrics", performanceHandler.ListPhysicalPerformances)
			perfGroup.DELETE("/metrics/:id", performanceHandler.DeletePhysicalPerformance)
			perfGroup.POST("/exercises", performanceHandler.LogExercise)
			perfGroup.GET("/exercises", performanceHandler.ListExercises)
			perfGroup.DELETE("/exercises/:id", performanceHandler.DeleteExercise)
		}

		// Community
		postGroup := protected.Group("/posts")
		{
			postGroup.POST("", communityHandler.CreatePost, custommiddleware.ValidateUpload("media"))
			postGroup.GET("", communityHandler.ListPosts)
			postGroup.GET("/:id", communityHandler.GetPost)
			postGroup.DELETE("/:id", communityHandler.DeletePost)
			postGroup.POST("/:id/reactions", communityHandler.React)
			postGroup.POST("/:id/comments", communityHandler.Comment)
			postGroup.DELETE("/comments/:commentId", communityHandler.DeleteComment)
		}

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(adminOnly)
		{
			adminGroup.POST("/plans", subscriptionHandler.CreatePlan)
			adminGroup.POST("/badges/recalculate", badgeHandler.Recalculate)
			adminGroup.GET("/career-forms", landingHandler.ListCareerForms)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 TrainHub API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: Daily 2AM (badge aggregation)")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
