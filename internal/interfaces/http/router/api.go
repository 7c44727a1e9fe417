package router

import (
	"time"

	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/donortrack/backend/internal/infrastructure/logger"
	"github.com/donortrack/backend/internal/interfaces/http/handler"
	"github.com/donortrack/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by New
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Donation   *handler.DonationHandler
	Project    *handler.ProjectHandler
	Report     *handler.ReportHandler
	Settlement *handler.SettlementHandler
}

// Config assembles the HTTP surface
type Config struct {
	HTTP          config.HTTPConfig
	Swagger       config.SwaggerConfig
	ServiceName   string
	Tracing       bool
	Meter         metric.Meter // optional
	Authenticator middleware.Authenticator
	// SettlementSecret signs settlement webhooks; empty disables the check
	SettlementSecret string
	Handlers         Handlers
	Logger           *zap.Logger
}

// API is the configured gin engine plus the limiters it owns
type API struct {
	Engine   *gin.Engine
	limiters []*middleware.RateLimiter
}

// Close stops the rate limiter sweepers
func (a *API) Close() {
	for _, l := range a.limiters {
		l.Stop()
	}
}

// New builds the engine: global middleware, /health, swagger and /api/v1
func New(cfg Config) (*API, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	api := &API{Engine: engine}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.Tracing),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		api.limiters = append(api.limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow))
	}
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}

	h := cfg.Handlers
	engine.GET("/health", h.Health.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	authn := middleware.JWTAuth(cfg.Authenticator, log)
	ngoOnly := middleware.RequireRole(identity.RoleNGOAdmin)

	auth := NewDomainGroup("auth", "/auth")
	credentials := auth.Group("credentials", "")
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		api.limiters = append(api.limiters, limiter)
		credentials.Use(middleware.RateLimit(limiter))
	}
	credentials.POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh).
		POST("/logout", authn, h.Auth.Logout)

	users := NewDomainGroup("users", "/users/me").Use(authn)
	users.GET("", h.User.GetProfile).
		PATCH("", h.User.UpdateProfile).
		POST("/password", h.Auth.ChangePassword)

	donations := NewDomainGroup("donations", "/donations").Use(authn)
	donations.GET("", h.Donation.List).
		POST("", h.Donation.Create).
		PATCH("", h.Donation.UpdateStatus).
		GET("/:id", h.Donation.Get)

	projects := NewDomainGroup("projects", "/projects")
	projects.GET("", h.Project.List).
		GET("/:id", h.Project.Get).
		GET("/:id/related", h.Project.Related).
		GET("/:id/donations/recent", h.Project.RecentDonations)
	manage := projects.Group("manage", "").Use(authn, ngoOnly)
	manage.POST("", h.Project.Create).
		PATCH("/:id", h.Project.Update).
		POST("/:id/updates", h.Project.AddUpdate).
		POST("/:id/milestones", h.Project.AddMilestone).
		POST("/:id/metrics", h.Project.AddMetric)

	reports := NewDomainGroup("reports", "").Use(authn)
	reports.GET("/reports", h.Report.GetReport).
		POST("/export", h.Report.Export)

	payments := NewDomainGroup("payments", "/payments").Use(middleware.VerifySignature(cfg.SettlementSecret))
	payments.POST("/settlements", h.Settlement.Settle)

	NewRouter(engine, WithAPIVersion("v1")).
		Register(auth).
		Register(users).
		Register(donations).
		Register(projects).
		Register(reports).
		Register(payments).
		Setup()

	return api, nil
}
