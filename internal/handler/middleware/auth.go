package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/handler/httperr"
	"gin-checkout-core/internal/pkg/cookie"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/jwt"
	"gin-checkout-core/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ctxPrincipalKey = "principal"

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokenValidator: tokenValidator}
}

// RequireAuth resolves the caller from the access token cookie or the
// Authorization header and aborts with 401 when neither yields a valid token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, source := extractToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Access token required", nil)
			return
		}

		principal, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			msg := "Invalid access token"
			if errs.Is(err, jwt.ErrExpiredToken) {
				msg = "Access token expired"
			}
			slog.WarnContext(c.Request.Context(), "access token rejected",
				"source", source, "request_id", GetRequestID(c), "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, msg, nil)
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// extractToken prefers the cookie; source names where the token came from.
func extractToken(c *gin.Context) (token, source string) {
	if token := cookie.GetAccessToken(c); token != "" {
		return token, "cookie"
	}
	scheme, value, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(value), "header"
	}
	return "", ""
}

// SetPrincipal stores the authenticated caller on the request.
func SetPrincipal(c *gin.Context, p usecase.Principal) {
	c.Set(ctxPrincipalKey, p)
}

func GetPrincipal(c *gin.Context) (usecase.Principal, bool) {
	v, exists := c.Get(ctxPrincipalKey)
	if !exists {
		return usecase.Principal{}, false
	}
	p, ok := v.(usecase.Principal)
	return p, ok
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	p, ok := GetPrincipal(c)
	return p.UserID, ok
}

func GetUserRole(c *gin.Context) (user.Role, bool) {
	p, ok := GetPrincipal(c)
	return p.Role, ok
}
