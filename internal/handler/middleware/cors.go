package middleware

import (
	"log/slog"
	"slices"

	"gin-checkout-core/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware always allows and exposes the request id header.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allow := slices.Concat(cfg.AllowHeaders, []string{RequestIDHeader})
	expose := slices.Concat(cfg.ExposeHeaders, []string{RequestIDHeader})
	slog.Info("CORS middleware initialized", "allow_origins", cfg.AllowOrigins, "expose_headers", expose)
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     allow,
		ExposeHeaders:    expose,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
