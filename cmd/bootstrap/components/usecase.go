package components

import (
	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/telemetry"
	"gin-checkout-core/internal/usecase"
	"gin-checkout-core/internal/usecase/commands"
	"gin-checkout-core/internal/usecase/inventory"
	"gin-checkout-core/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		order.NewDefaultPriceCalculator,
		fx.As(new(order.PriceCalculator)),
	),
	fx.Annotate(
		order.NewRandomTokenGenerator,
		fx.As(new(order.TokenGenerator)),
	),
	func(clock clock.Clock, calc order.PriceCalculator, tokens order.TokenGenerator, cfg config.Config) *order.Factory {
		return order.NewFactory(clock, calc, tokens, cfg.Checkout.DeferredPaymentTTL)
	},
	func(cfg config.Config, metrics *telemetry.Metrics) inventory.Engine {
		return inventory.NewEngine(cfg.Checkout, metrics)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewCheckoutCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewOrderQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
