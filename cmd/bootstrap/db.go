package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/infra/memory"
	"gin-checkout-core/internal/infra/readstore"
	"gin-checkout-core/internal/infra/uow"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/usecase/queries"
	"gin-checkout-core/internal/usecase/shared"
	"gin-checkout-core/migrations"

	"go.uber.org/fx"
)

const connectTimeout = 10 * time.Second

var DBModule = fx.Module("db",
	fx.Provide(
		NewStore,
	),
)

// Store is every persistence port the use cases need, backed by one driver.
type Store struct {
	fx.Out

	UoW        shared.UnitOfWork
	OrderViews queries.OrderViewRepo
	UserViews  queries.UserReadStore
}

func NewStore(lc fx.Lifecycle, cfg config.Config) (Store, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		return newMemoryStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return Store{}, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	if cfg.DB.AutoMigrate {
		if _, err := db.Migrate(ctx, pool, migrations.FS); err != nil {
			return Store{}, err
		}
	}

	return Store{
		UoW:        uow.NewPostgresUoW(pool),
		OrderViews: readstore.NewOrderReadStore(pool),
		UserViews:  readstore.NewUserReadStore(pool),
	}, nil
}

func newMemoryStore() (Store, error) {
	store := memory.NewStore()
	if err := memory.SeedDemo(store); err != nil {
		return Store{}, err
	}
	slog.Warn("using in-memory store, data is lost on restart", "demo_user", "buyer@example.com")

	return Store{
		UoW:        store,
		OrderViews: memory.NewReadStore(store),
		UserViews:  memory.NewUserReadStore(store),
	}, nil
}
