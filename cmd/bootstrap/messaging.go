package bootstrap

import (
	"context"

	"gin-checkout-core/internal/infra/messaging"
	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/telemetry"
	"gin-checkout-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewPublisher,
		NewRelay,
	),
	fx.Invoke(startRelay),
)

func NewPublisher(lc fx.Lifecycle, cfg config.Config) messaging.Publisher {
	pub := messaging.NewPublisher(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub
}

func NewRelay(uow shared.UnitOfWork, pub messaging.Publisher, clk clock.Clock, metrics *telemetry.Metrics, cfg config.Config) *messaging.Relay {
	return messaging.NewRelay(uow, pub, clk, metrics, cfg.Kafka)
}

// the relay stops before the publisher closes: fx runs OnStop hooks in reverse order
func startRelay(lc fx.Lifecycle, relay *messaging.Relay) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			relay.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			relay.Stop()
			return nil
		},
	})
}
