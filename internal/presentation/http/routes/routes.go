package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/optica-api/internal/config"
	"github.com/sangkips/optica-api/internal/domain/entity"
	domainRepo "github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/internal/infrastructure/database"
	"github.com/sangkips/optica-api/internal/presentation/http/handler"
	"github.com/sangkips/optica-api/internal/presentation/http/middleware"
	"github.com/sangkips/optica-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth         *handler.AuthHandler
	Client       *handler.ClientHandler
	Product      *handler.ProductHandler
	Receipt      *handler.ReceiptHandler
	Dashboard    *handler.DashboardHandler
	Subscription *handler.SubscriptionHandler
	Printer      *handler.PrinterHandler
	Realtime     *handler.RealtimeHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Access          middleware.AccessChecker
	RateLimiter     *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, h)

		// Browsers cannot set headers on websocket upgrades
		v1.GET("/ws", middleware.WebSocketAuthMiddleware(deps.JWTManager), h.Realtime.Connect)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerAccountRoutes(protected, h)
		registerAdminRoutes(protected, h)

		shop := protected.Group("")
		shop.Use(middleware.SubscriptionGuard(deps.Access))
		shop.Use(middleware.OwnerMiddleware())
		registerShopRoutes(shop, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.GET("/google", h.Auth.GoogleLogin)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

// registerAccountRoutes stay reachable after a subscription ends so the
// owner can see why access was refused.
func registerAccountRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)
	protected.GET("/subscription", h.Subscription.Me)
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(entity.RoleSuperAdmin))
	admin.Use(middleware.RequirePermission(database.PermManageSubscriptions))
	{
		admin.GET("/subscriptions", h.Subscription.List)
		admin.PUT("/subscriptions/:id", h.Subscription.Update)
		admin.GET("/subscriptions/audit-logs", h.Subscription.AuditLogs)
	}
}

func registerShopRoutes(shop *gin.RouterGroup, h *Handlers, deps *Deps) {
	dashboard := shop.Group("/dashboard")
	dashboard.Use(middleware.RequirePermission(database.PermViewDashboard))
	{
		dashboard.GET("/stats", h.Dashboard.GetStats)
		dashboard.GET("/revenue", h.Dashboard.GetRevenue)
	}

	clients := shop.Group("/clients")
	clients.Use(middleware.RequirePermission(database.PermManageClients))
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
		clients.GET("/:id/receipts", h.Client.Receipts)
	}

	products := shop.Group("/products")
	products.Use(middleware.RequirePermission(database.PermManageProducts))
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.POST("/import", h.Product.Import)
		products.PUT("/reorder", h.Product.Reorder)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}

	receipts := shop.Group("/receipts")
	receipts.Use(middleware.RequirePermission(database.PermManageReceipts))
	{
		receipts.GET("", h.Receipt.List)
		receipts.POST("", middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}), h.Receipt.Create)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.PUT("/:id", h.Receipt.Update)
		receipts.DELETE("/:id", h.Receipt.Delete)
		receipts.PATCH("/:id/paid", h.Receipt.MarkPaid)
		receipts.PATCH("/:id/delivery", h.Receipt.ToggleDelivery)
		receipts.PATCH("/:id/montage", h.Receipt.SetMontageStatus)
		receipts.POST("/:id/print", h.Receipt.Print)
	}

	shop.GET("/printer/status", h.Printer.GetStatus)
}
