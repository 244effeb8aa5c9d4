package bootstrap

import (
	"context"

	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/telemetry"

	"go.uber.org/fx"
)

var TelemetryModule = fx.Module("telemetry",
	fx.Provide(
		telemetry.NewMetrics,
	),
	fx.Invoke(startTracer),
)

func startTracer(lc fx.Lifecycle, cfg config.Config) error {
	tp, err := telemetry.InitTracer(context.Background(), cfg.Telemetry)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return nil
}
