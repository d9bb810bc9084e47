package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesdesk-api/internal/config"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/metrics"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/salesdesk-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	SalesHistory *handler.SalesHistoryHandler
	Printer      *handler.PrinterHandler
	Settings     *handler.SettingsHandler
}

// Deps holds shared dependencies needed by the routes. A nil RateLimiter
// is built from the config.
type Deps struct {
	JWTManager  *utils.JWTManager
	Cfg         *config.Config
	RateLimiter *middleware.UserRateLimiter
}

// NewRateLimiter builds the per-user limiter from the rate limit config.
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.UserRateLimiter {
	perSecond := 0.0
	if cfg.Duration > 0 {
		perSecond = float64(cfg.Requests) / float64(cfg.Duration)
	}
	return middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: perSecond,
		BurstSize:         cfg.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = NewRateLimiter(deps.Cfg.RateLimit)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())

		registerSalesHistoryRoutes(protected, h)
		registerEventRoutes(protected, h)
		registerPrinterRoutes(protected, h)

		// Settings
		protected.GET("/settings", h.Settings.GetSettings)
	}

	return router
}

func registerSalesHistoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	sessions := protected.Group("/sales-history/sessions")
	{
		sessions.POST("", h.SalesHistory.OpenSession)
		sessions.GET("/:sid", h.SalesHistory.GetSession)
		sessions.DELETE("/:sid", h.SalesHistory.CloseSession)
		sessions.PUT("/:sid/filter", h.SalesHistory.SetFilter)
		sessions.PUT("/:sid/search", h.SalesHistory.Search)
		sessions.PUT("/:sid/sort", h.SalesHistory.Sort)
		sessions.PUT("/:sid/page", h.SalesHistory.SetPage)
		sessions.PUT("/:sid/auto-refresh", h.SalesHistory.SetAutoRefresh)
		sessions.POST("/:sid/refresh", h.SalesHistory.Refresh)
		sessions.GET("/:sid/transactions/:id", h.SalesHistory.GetTransaction)
		sessions.DELETE("/:sid/transactions", h.SalesHistory.CloseTransaction)
		sessions.POST("/:sid/receipt", h.SalesHistory.PrintReceipt)
		sessions.GET("/:sid/receipt/preview", h.SalesHistory.PreviewReceipt)
		sessions.GET("/:sid/export", h.SalesHistory.Export)
	}
}

func registerEventRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.POST("/events/transaction-recorded", h.SalesHistory.TransactionRecorded)
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}
}
