//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTHelper mints tokens the router under test accepts, or deliberately does not.
type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) sign(t *testing.T, svc *jwt.Service, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := svc.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	return h.sign(t, jwt.NewService(h.cfg.Secret, h.cfg.Duration, jwt.WithIssuer(h.cfg.Issuer)), userID, role)
}

// CreateExpiredToken issues a token whose lifetime ended well beyond the
// verifier's clock skew allowance.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	issuedAt := time.Now().Add(-2 * h.cfg.Duration).Add(-time.Hour)
	svc := jwt.NewService(h.cfg.Secret, h.cfg.Duration,
		jwt.WithIssuer(h.cfg.Issuer),
		jwt.WithNow(func() time.Time { return issuedAt }))
	return h.sign(t, svc, userID, role)
}

// CreateForeignToken is signed with a different key.
func (h *JWTHelper) CreateForeignToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	return h.sign(t, jwt.NewService(h.cfg.Secret+"-other", h.cfg.Duration, jwt.WithIssuer(h.cfg.Issuer)), userID, role)
}
