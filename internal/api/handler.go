package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"
	"storefront-api/internal/service"
	"storefront-api/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the services the handlers delegate to
type Services struct {
	Catalog       *service.CatalogService
	Carts         *service.CartService
	Wishlists     *service.WishlistService
	Orders        *service.OrderService
	Checkout      *service.CheckoutService
	Notifications *service.NotificationService
	Users         *service.UserService
	Analytics     *service.AnalyticsService
}

// Options configures the router
type Options struct {
	AllowedOrigins []string
	// Probes are pinged by /ready, keyed by name
	Probes map[string]Pinger
}

// Handler contains HTTP handlers
type Handler struct {
	services   Services
	identities auth.IdentityResolver
	roles      auth.RoleChecker
	opts       Options
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, identities auth.IdentityResolver, roles auth.RoleChecker, opts Options) *Handler {
	SetupValidator()
	return &Handler{
		services:   services,
		identities: identities,
		roles:      roles,
		opts:       opts,
		logger:     util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(h.opts.AllowedOrigins)))
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := h.requireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)
		v1.GET("/categories/:id", h.getCategory)
	}

	authed := v1.Group("", h.authenticate())
	{
		authed.POST("/products", admin, h.createProduct)
		authed.PUT("/products/:id", admin, h.updateProduct)
		authed.DELETE("/products/:id", admin, h.deleteProduct)

		authed.POST("/categories", admin, h.createCategory)
		authed.PUT("/categories/:id", admin, h.updateCategory)
		authed.DELETE("/categories/:id", admin, h.deleteCategory)

		authed.GET("/cart", h.getCart)
		authed.POST("/cart", h.addToCart)
		authed.PUT("/cart/:id", h.updateCartItem)
		authed.DELETE("/cart/:id", h.removeCartItem)
		authed.DELETE("/cart", h.clearCart)

		authed.GET("/wishlist", h.getWishlist)
		authed.POST("/wishlist", h.addToWishlist)
		authed.DELETE("/wishlist/:id", h.removeWishlistItem)
		authed.DELETE("/wishlist/product/:productId", h.removeWishlistProduct)

		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.POST("/orders", h.createOrder)
		authed.PUT("/orders/:id", admin, h.updateOrder)
		authed.DELETE("/orders/:id", admin, h.deleteOrder)

		authed.POST("/notifications/invoice", h.sendInvoice)

		authed.GET("/settings/admin-whatsapp", admin, h.getAdminWhatsApp)
		authed.PUT("/settings/admin-whatsapp", admin, h.putAdminWhatsApp)

		authed.GET("/users", admin, h.listUsers)
		authed.GET("/users/me", h.getMe)
		authed.PUT("/users/me", h.updateMe)
		authed.GET("/users/:id", admin, h.getUser)
		authed.PUT("/users/:id/roles", admin, h.setUserRoles)
		authed.DELETE("/users/:id", admin, h.deleteUser)

		authed.GET("/analytics/dashboard", admin, h.getDashboard)
		authed.GET("/analytics/revenue", admin, h.getRevenue)
		authed.GET("/analytics/products", admin, h.getProductStats)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for name, probe := range h.opts.Probes {
		if err := probe.Ping(ctx); err != nil {
			h.logger.Warn("Readiness probe failed", zap.String("dependency", name), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not ready",
				"dependency": name,
				"time":       time.Now().Unix(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// corsConfig allows the storefront client's headers; no origins or "*" allows any origin
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Length", "Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// requestLogger writes one access log line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if identity, ok := auth.FromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("user_id", identity.UserID.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}
