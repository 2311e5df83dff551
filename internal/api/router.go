package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/threatflux/datahub/internal/api/handlers"
	"github.com/threatflux/datahub/internal/api/stream"
	"github.com/threatflux/datahub/internal/middleware/auth"
	"github.com/threatflux/datahub/internal/middleware/logging"
	"github.com/threatflux/datahub/internal/middleware/recovery"
	"github.com/threatflux/datahub/internal/models/user"
	"github.com/threatflux/datahub/pkg/logger"
)

// RouterConfig holds the configuration for the router.
type RouterConfig struct {
	// LoggingConfig is the configuration for request logging
	LoggingConfig logging.Config

	// RecoveryConfig is the configuration for panic recovery
	RecoveryConfig recovery.Config

	// BasePath is the base path for all API routes (e.g., "/api/v1")
	BasePath string

	// EnableCORS determines if CORS support is enabled
	EnableCORS bool
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		BasePath:   "/api/v1",
		EnableCORS: true,
		LoggingConfig: logging.Config{
			SkipPaths:          []string{"/health", "/metrics"},
			MaxBodyLogSize:     4096,
			IncludeRequestBody: true,
		},
		RecoveryConfig: recovery.Config{
			DisableStackTrace: false,
		},
	}
}

// SetupRouter configures the API router with standard middleware and the
// DataHub push/query/admin routes.
func SetupRouter(
	engine *gin.Engine,
	log logger.Logger,
	config RouterConfig,
	authMiddleware *auth.JWTMiddleware,
	roleMiddleware *auth.RoleMiddleware,
	authHandler *handlers.AuthHandler,
	dataHub *handlers.DataHubHandler,
	healthHandler *handlers.HealthHandler,
	streamHandler *stream.Handler,
) *gin.Engine {
	// Apply middleware to all routes
	engine.Use(recovery.Handler(log, config.RecoveryConfig))
	engine.Use(logging.RequestLogger(log, config.LoggingConfig))

	// CORS support if enabled
	if config.EnableCORS {
		engine.Use(corsMiddleware())
	}

	// Health check endpoints (not behind auth)
	healthHandler.RegisterHandler(engine)

	// Setup API routes under base path
	api := engine.Group(config.BasePath)

	// Public routes (no auth required)
	setupPublicRoutes(api, authHandler)

	// Protected routes (auth required) — producer apps pushing/querying
	// their own namespace, per spec.md §4.8.
	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate())
	setupAppRoutes(protected, dataHub, roleMiddleware)

	// Admin routes — unrestricted across any absolute path.
	admin := protected.Group("/admin")
	admin.Use(roleMiddleware.RequireRole("admin"))
	setupAdminRoutes(admin, dataHub, streamHandler, roleMiddleware)

	engine.NoRoute(noRouteHandler)

	return engine
}

// setupPublicRoutes configures routes that don't require authentication.
func setupPublicRoutes(router *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	// Authentication endpoints
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}
}

// setupAppRoutes configures the routes a producer app uses to register
// resources, push samples, and query any path's current value.
func setupAppRoutes(router *gin.RouterGroup, dataHub *handlers.DataHubHandler, roleMiddleware *auth.RoleMiddleware) {
	app := router.Group("/app")
	{
		app.POST("/inputs", roleMiddleware.RequirePermission(user.PermRegister), dataHub.RegisterInput)
		app.POST("/outputs", roleMiddleware.RequirePermission(user.PermRegister), dataHub.RegisterOutput)
		app.POST("/push", roleMiddleware.RequirePermission(user.PermPush), dataHub.Push)
	}

	router.GET("/query", roleMiddleware.RequirePermission(user.PermQuery), dataHub.Query)
}

// setupAdminRoutes configures the administrator surface: default/
// override/source management, config loading, destinations, the
// introspection snapshot, and the live stream subscription endpoint.
func setupAdminRoutes(router *gin.RouterGroup, dataHub *handlers.DataHubHandler, streamHandler *stream.Handler, roleMiddleware *auth.RoleMiddleware) {
	router.POST("/push", dataHub.AdminPush)
	router.GET("/snapshot", dataHub.Snapshot)

	router.DELETE("/io", dataHub.DeleteIO)
	router.DELETE("/observations/:name", dataHub.DeleteObservation)

	router.PUT("/default", dataHub.SetDefault)
	router.DELETE("/default", dataHub.RemoveDefault)

	router.PUT("/override", dataHub.SetOverride)
	router.DELETE("/override", dataHub.RemoveOverride)

	router.PUT("/source", dataHub.SetSource)
	router.DELETE("/source", dataHub.RemoveSource)

	router.POST("/destinations", roleMiddleware.RequirePermission(user.PermManageDestinations), dataHub.AddDestination)

	router.POST("/config", roleMiddleware.RequirePermission(user.PermManageConfig), dataHub.LoadConfig)

	router.GET("/stream/:destination", roleMiddleware.RequirePermission(user.PermManageDestinations), streamHandler.HandleSubscribe)
}

// noRouteHandler handles requests to non-existent routes.
func noRouteHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"status":  http.StatusNotFound,
		"code":    "NOT_FOUND",
		"message": "The requested resource was not found",
	})
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
