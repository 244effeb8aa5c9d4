package bootstrap

import (
	"gin-checkout-core/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// Module is the whole service graph except the HTTP listener.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	infraModules,
	components.UseCaseModule,
	components.HandlerModule,
)

var infraModules = fx.Options(
	TelemetryModule,
	DBModule,
	JWTModule,
	MessagingModule,
)
