package handlers

import (
	"log/slog"

	"licenseplatform/services/api-gateway/internal/middleware"
	"licenseplatform/services/api-gateway/internal/security"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	TrustedProxies []string
	APIKeyHash     string
}

// NewRouter wires the HTTP surface. rateLimit guards the activation route
// and may be nil.
func NewRouter(
	cfg RouterConfig,
	activationHandler *ActivationHandler,
	rateLimit gin.HandlerFunc,
	hasher *security.APIKeyHasher,
	tokens *security.TokenManager,
	logger *slog.Logger,
) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger))

	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.APIKeyHeader, middleware.RequestIDHeader}
		corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader}
		corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		r.Use(cors.New(corsCfg))
	}

	api := r.Group("/api/v1")
	{
		activations := api.Group("/activations")
		{
			activate := []gin.HandlerFunc{}
			if rateLimit != nil {
				activate = append(activate, rateLimit)
			}
			activate = append(activate, middleware.APIKeyAuth(hasher, cfg.APIKeyHash), activationHandler.Activate)
			activations.POST("", activate...)

			activations.GET("/:serialNo", middleware.SupportAuth(tokens), activationHandler.ListBindings)
		}
	}

	return r, nil
}
