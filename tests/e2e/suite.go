//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"gin-checkout-core/cmd/bootstrap"
	"gin-checkout-core/cmd/bootstrap/components"
	"gin-checkout-core/internal/infra/readstore"
	"gin-checkout-core/internal/infra/uow"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/tests/common/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

// SharedSuite gives each e2e suite its own migrated database and a router
// wired exactly like the service, minus the config and pool providers.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	srv, err := sharedPostgres()
	require.NoError(t, err)

	dbCfg := createDatabase(t, srv)
	s.DB = openMigrated(t, dbCfg)

	s.Config = config.NewTestConfig()
	s.Config.DB = dbCfg
	s.Config.Store.Driver = config.StoreDriverPostgres

	s.Router = startApp(t, s.Config, s.DB)
	slog.Info("E2E環境の準備が完了しました", "database", dbCfg.DBName)
}

// SetupSubTest truncates every table; subtests seed what they need.
func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "データベースのリセットに失敗")
}

// startApp boots the fx graph against pool. The suite owns the pool, so the
// store provider does not register a close hook.
func startApp(t *testing.T, cfg config.Config, pool *pgxpool.Pool) *gin.Engine {
	t.Helper()

	var router *gin.Engine
	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(func() bootstrap.Store {
			return bootstrap.Store{
				UoW:        uow.NewPostgresUoW(pool),
				OrderViews: readstore.NewOrderReadStore(pool),
				UserViews:  readstore.NewUserReadStore(pool),
			}
		}),
		bootstrap.LoggerModule,
		bootstrap.TelemetryModule,
		bootstrap.JWTModule,
		components.UseCaseModule,
		bootstrap.MessagingModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "fxアプリケーションの起動に失敗")

	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			slog.Warn("fxアプリケーションの停止に失敗しました", "error", err.Error())
		}
	})

	require.NotNil(t, router, "Routerのセットアップに失敗")
	return router
}
