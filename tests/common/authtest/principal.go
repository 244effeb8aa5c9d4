//go:build unit || e2e

package authtest

import (
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/handler/middleware"
	"gin-checkout-core/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// As stands in for RequireAuth in handler tests.
func As(userID uuid.UUID, role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetPrincipal(c, usecase.Principal{UserID: userID, Role: role})
		c.Next()
	}
}
