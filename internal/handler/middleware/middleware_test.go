//go:build unit

package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/handler/middleware"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/cookie"
	"gin-checkout-core/internal/pkg/jwt"
	"gin-checkout-core/internal/usecase"
	"gin-checkout-core/tests/common/authtest"
	"gin-checkout-core/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validator := usecase.NewTokenValidator(jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration, jwt.WithIssuer(cfg.JWT.Issuer)))
	r := gin.New()
	r.Use(middleware.LoggingMiddleware(slog.New(slog.DiscardHandler)), middleware.ErrorHandler())
	r.GET("/me", middleware.NewAuthMiddleware(validator).RequireAuth(), func(c *gin.Context) {
		p, ok := middleware.GetPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": p.UserID, "role": p.Role})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	cfg := config.NewTestConfig()
	helper := authtest.NewJWTHelper(cfg.JWT)
	userID := uuid.New()

	tests := []struct {
		name        string
		prepare     func(req *http.Request)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "bearer header",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+helper.GenerateToken(t, userID, user.RoleCustomer))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "lowercase scheme",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "bearer "+helper.GenerateToken(t, userID, user.RoleCustomer))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "cookie wins over header",
			prepare: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: cookie.AccessTokenCookieName, Value: helper.GenerateToken(t, userID, user.RoleCustomer)})
				req.Header.Set("Authorization", "Bearer garbage")
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "no token",
			prepare:     func(*http.Request) {},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Access token required",
		},
		{
			name: "basic scheme is ignored",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Access token required",
		},
		{
			name: "expired",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+helper.CreateExpiredToken(t, userID, user.RoleCustomer))
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Access token expired",
		},
		{
			name: "signed with another key",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+helper.CreateForeignToken(t, userID, user.RoleCustomer))
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid access token",
		},
		{
			name: "unknown role",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+helper.GenerateToken(t, userID, user.Role("root")))
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid access token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(t, cfg)
			req := nethttptest.NewRequest(http.MethodGet, "/me", nil)
			tt.prepare(req)
			w := nethttptest.NewRecorder()

			router.ServeHTTP(w, req)

			if tt.wantMessage != "" {
				httptest.AssertErrorResponse(t, w, tt.wantStatus, tt.wantMessage)
				return
			}
			require.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				ID   uuid.UUID `json:"id"`
				Role string    `json:"role"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, userID, body.ID)
			assert.Equal(t, "customer", body.Role)
		})
	}
}

func TestRequireSettlementSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
	}{
		{name: "matching secret", configured: "s3cret", sent: "s3cret", wantStatus: http.StatusNoContent},
		{name: "wrong secret", configured: "s3cret", sent: "guess", wantStatus: http.StatusUnauthorized},
		{name: "missing header", configured: "s3cret", sent: "", wantStatus: http.StatusUnauthorized},
		{name: "unconfigured secret rejects everything", configured: "", sent: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/confirm",
				middleware.RequireSettlementSecret(config.CheckoutConfig{SettlementSecret: tt.configured}),
				func(c *gin.Context) { c.Status(http.StatusNoContent) })

			req := nethttptest.NewRequest(http.MethodPost, "/confirm", nil)
			if tt.sent != "" {
				req.Header.Set(middleware.SettlementSecretHeader, tt.sent)
			}
			w := nethttptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(buf *bytes.Buffer) *gin.Engine {
		r := gin.New()
		r.Use(middleware.LoggingMiddleware(slog.New(slog.NewJSONHandler(buf, nil))))
		r.GET("/checkout/deferred/:token", func(c *gin.Context) {
			c.String(http.StatusOK, middleware.GetRequestID(c))
		})
		return r
	}

	t.Run("reuses a valid incoming request id", func(t *testing.T) {
		var buf bytes.Buffer
		id := uuid.NewString()
		req := nethttptest.NewRequest(http.MethodGet, "/checkout/deferred/abcdefghijklmnopqrstuvwxyz", nil)
		req.Header.Set(middleware.RequestIDHeader, id)
		w := nethttptest.NewRecorder()

		newRouter(&buf).ServeHTTP(w, req)

		assert.Equal(t, id, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("replaces a malformed request id", func(t *testing.T) {
		var buf bytes.Buffer
		req := nethttptest.NewRequest(http.MethodGet, "/checkout/deferred/abcdefghijklmnopqrstuvwxyz", nil)
		req.Header.Set(middleware.RequestIDHeader, "\nforged")
		w := nethttptest.NewRecorder()

		newRouter(&buf).ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get(middleware.RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("masks the deferred token in the log line", func(t *testing.T) {
		var buf bytes.Buffer
		token := "abcdefghijklmnopqrstuvwxyz"
		w := nethttptest.NewRecorder()

		newRouter(&buf).ServeHTTP(w, nethttptest.NewRequest(http.MethodGet, "/checkout/deferred/"+token, nil))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.NotContains(t, buf.String(), token)
		assert.Equal(t, "/checkout/deferred/:token", line["route"])
		assert.EqualValues(t, http.StatusOK, line["status_code"])
	})
}
