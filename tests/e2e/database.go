//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/migrations"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// createDatabase creates a throwaway database on srv and drops it when t ends.
func createDatabase(t *testing.T, srv postgresServer) config.DBConfig {
	t.Helper()

	name := "checkout_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, srv.dsn("postgres"))
	require.NoError(t, err, "管理者接続に失敗")
	defer admin.Close()

	// 並列スイートがテンプレートDBを同時に使うと失敗することがあるため再試行する
	create := func() error {
		_, err := admin.Exec(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name))
		if err != nil {
			slog.Warn("データベース作成を再試行中", "database", name, "error", err.Error())
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	require.NoError(t, backoff.Retry(create, policy), "テスト用データベースの作成に失敗")

	t.Cleanup(func() { dropDatabase(srv, name) })

	return config.DBConfig{
		Host:     srv.Host,
		Port:     srv.Port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "America/Sao_Paulo",
		MaxConns: 20,
	}
}

func dropDatabase(srv postgresServer, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, srv.dsn("postgres"))
	if err != nil {
		slog.Warn("クリーンアップ用の接続に失敗しました", "database", name, "error", err.Error())
		return
	}
	defer admin.Close()

	if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(name)+" WITH (FORCE)"); err != nil {
		slog.Warn("テストデータベースの削除に失敗しました", "database", name, "error", err.Error())
	}
}

// openMigrated connects to the suite database and applies the schema.
func openMigrated(t *testing.T, cfg config.DBConfig) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, closePool, err := db.Connect(ctx, cfg)
	require.NoError(t, err, "データベース接続に失敗")
	t.Cleanup(closePool)

	applied, err := db.Migrate(ctx, pool, migrations.FS)
	require.NoError(t, err, "マイグレーションに失敗")
	require.NotEmpty(t, applied, "マイグレーションが適用されていない")

	return pool
}
