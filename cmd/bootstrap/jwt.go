package bootstrap

import (
	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		newJWTService,
	),
)

// tokens share the use case clock so expiry follows the same time source as orders
func newJWTService(cfg config.Config, clk clock.Clock) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration,
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithNow(clk.Now),
	)
}
