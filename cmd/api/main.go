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
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/menuvio/backoffice/config"
	"github.com/menuvio/backoffice/pkg/accounts"
	"github.com/menuvio/backoffice/pkg/api/handlers"
	"github.com/menuvio/backoffice/pkg/billing"
	"github.com/menuvio/backoffice/pkg/cache"
	"github.com/menuvio/backoffice/pkg/database"
	"github.com/menuvio/backoffice/pkg/email"
	"github.com/menuvio/backoffice/pkg/identity"
	"github.com/menuvio/backoffice/pkg/logger"
	"github.com/menuvio/backoffice/pkg/metrics"
	custommw "github.com/menuvio/backoffice/pkg/middleware"
	"github.com/menuvio/backoffice/pkg/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.Environment)

	appLogger := logger.New(cfg.Log.Level, cfg.Log.Format)

	// Initialize Sentry for error tracking
	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.Sentry.Environment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.NewClient(cfg.Database.URL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("✅ Database connected and migrations applied")

	// Initialize Redis for the session revocation list (optional)
	var redisClient *cache.Client
	var revocation *session.RevocationList
	if cfg.Redis.URL != "" {
		redisClient, err = cache.NewClient(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		revocation = session.NewRevocationList(redisClient)
		log.Printf("✅ Redis connected (session revocation enabled)")
	} else {
		log.Printf("ℹ️  Redis disabled, session revocation unavailable")
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()

	// Initialize services
	identityClient := identity.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	sessionValidator := session.NewValidator(identityClient, revocation, appLogger)
	accountResolver := accounts.NewResolver(db.DB)
	emailService := email.NewService(cfg.Email.From, cfg.Email.FromName, cfg.Email.SendGridAPIKey, appLogger)
	billingService := billing.NewService(db.DB, emailService, prometheusMetrics, appLogger, cfg.Stripe.WebhookSecret)

	// Initialize handlers
	billingHandler := handlers.NewBillingHandler(billingService, appLogger)
	authHandler := handlers.NewAuthHandler(revocation, accountResolver, appLogger)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Rate limiters
	globalRateLimiter := custommw.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	webhookRateLimiter := custommw.NewRateLimiter(100, 20) // Stripe retries in bursts

	// Global middleware
	e.Use(middleware.Recover())
	if cfg.Sentry.DSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.Secure())

	// The identity provider's client reads content-range on range queries,
	// so it has to survive CORS response filtering.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Range"},
	}))

	e.Use(globalRateLimiter.Middleware())

	// Session middleware chain: cookie client + provider validation first,
	// then the path gate.
	e.Use(custommw.Session(sessionValidator, cfg.SessionCookieName))
	e.Use(custommw.AuthGuard(prometheusMetrics))

	// Health and observability endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Menuvio Backoffice API",
			"status":      "running",
			"environment": cfg.Environment,
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

		if redisClient != nil {
			if err := redisClient.Ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]any{
					"status": "unhealthy",
					"cache":  "down",
				})
			}
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
		})
	})

	e.GET("/metrics", echo.WrapHandler(prometheusMetrics.Handler()))

	// Stripe webhook with higher rate limit: 100 per minute
	e.POST("/api/billing/subscriptions/", billingHandler.HandleWebhook, webhookRateLimiter.Middleware())

	// Session endpoints
	e.POST("/api/auth/logout", authHandler.Logout)
	e.GET("/api/me", authHandler.Me)

	// App pages: the gate redirects around these
	e.GET("/auth", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"page": "auth"})
	})
	e.GET("/private", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"page": "private"})
	})
	e.GET("/private/*", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"page": "private"})
	})

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Printf("🚀 Menuvio Backoffice API starting on %s", address)
	log.Printf("🔐 Identity provider: %s", cfg.Supabase.URL)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), webhook 100/min", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
