package handlers

import (
	"net/http"

	"github.com/SscSPs/gst_return_app/cmd/docs"
	portssvc "github.com/SscSPs/gst_return_app/internal/core/ports/services"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/middleware"
	"github.com/SscSPs/gst_return_app/internal/platform/analytics"
	"github.com/SscSPs/gst_return_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// uploadLimiter may be nil to leave uploads unthrottled.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	uploadLimiter *limiter.Limiter,
	tracker analytics.Tracker,
) {
	dto.RegisterValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services, uploadLimiter, tracker)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	uploadLimiter *limiter.Limiter,
	tracker analytics.Tracker,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	if tracker != nil {
		v1.Use(middleware.PosthogMiddleware(tracker))
	}

	sessionOpts := []SessionRoutesOption{WithMaxUploadBytes(cfg.MaxUploadBytes)}
	if uploadLimiter != nil {
		sessionOpts = append(sessionOpts, WithUploadMiddleware(middleware.RateLimit(uploadLimiter)))
	}

	RegisterCatalogRoutes(v1, services.Catalog)
	RegisterSessionRoutes(v1, services.Session, sessionOpts...)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
