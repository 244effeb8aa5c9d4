package bootstrap

import (
	"log/slog"

	"gin-checkout-core/internal/handler/middleware"
	"gin-checkout-core/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(logConfigSummary),
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		newLogger,
	),
)

// newLogger also installs the logger as the slog default.
func newLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log)
}

// logConfigSummary records the effective settings at startup. Secrets and
// connection credentials are left out.
func logConfigSummary(cfg config.Config, logger *slog.Logger) {
	attrs := []any{
		slog.String("port", cfg.Server.Port),
		slog.String("store", cfg.Store.Driver),
		slog.String("log_level", cfg.Log.Level),
		slog.Group("checkout",
			slog.String("inventory_strategy", cfg.Checkout.InventoryStrategy),
			slog.Int("cas_max_retries", cfg.Checkout.InventoryCASMaxRetries),
			slog.Duration("deferred_ttl", cfg.Checkout.DeferredPaymentTTL),
		),
		slog.Bool("kafka", cfg.Kafka.Enabled()),
		slog.Bool("tracing", cfg.Telemetry.OTLPEndpoint != ""),
	}
	if cfg.Store.Driver == config.StoreDriverPostgres {
		attrs = append(attrs, slog.Group("db",
			slog.String("host", cfg.DB.Host),
			slog.String("name", cfg.DB.DBName),
			slog.Bool("auto_migrate", cfg.DB.AutoMigrate),
		))
	}
	logger.Info("configuration loaded", attrs...)
}
