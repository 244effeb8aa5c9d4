package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"gin-checkout-core/internal/handler/httperr"
	"gin-checkout-core/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const SettlementSecretHeader = "X-Settlement-Secret"

// RequireSettlementSecret guards the payment provider callback. The caller is
// the provider, not a buyer, so there is no JWT to check.
func RequireSettlementSecret(cfg config.CheckoutConfig) gin.HandlerFunc {
	secret := []byte(cfg.SettlementSecret)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(SettlementSecretHeader))
		if len(secret) == 0 || subtle.ConstantTimeCompare(got, secret) != 1 {
			slog.Warn("settlement callback rejected", "client_ip", c.ClientIP(), "request_id", GetRequestID(c))
			httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Invalid settlement secret", nil)
			return
		}
		c.Next()
	}
}
