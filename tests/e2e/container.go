//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgImage    = "postgres:17"
	pgUser     = "checkout"
	pgPassword = "checkout-e2e"
	pgPort     = nat.Port("5432/tcp")
)

// postgresServer is shared by every suite of the test process; each suite
// gets its own database on it.
type postgresServer struct {
	Host string
	Port nat.Port
}

func (p postgresServer) dsn(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pgUser, pgPassword, p.Host, p.Port.Port(), database)
}

var (
	serverOnce sync.Once
	server     postgresServer
	serverErr  error
)

// sharedPostgres starts the container on first use. Ryuk reaps it when the
// process exits.
func sharedPostgres() (postgresServer, error) {
	serverOnce.Do(func() {
		server, serverErr = startPostgres()
	})
	return server, serverErr
}

func startPostgres() (postgresServer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	started := time.Now()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{string(pgPort)},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       "postgres",
			},
			// データはRAM上に置く
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "shared_buffers=256MB",
				// 同時購入テストで接続数を多く使う
				"-c", "max_connections=300",
				"-c", "log_statement=none",
			},
			WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
				return postgresServer{Host: host, Port: port}.dsn("postgres")
			}).WithStartupTimeout(90 * time.Second),
			Labels: map[string]string{"purpose": "checkout-e2e"},
		},
		Started: true,
	})
	if err != nil {
		return postgresServer{}, fmt.Errorf("PostgreSQLコンテナの起動に失敗: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		return postgresServer{}, err
	}
	port, err := c.MappedPort(ctx, pgPort)
	if err != nil {
		return postgresServer{}, err
	}

	slog.Info("PostgreSQLコンテナを起動しました", "host", host, "port", port.Port(), "elapsed", time.Since(started))
	return postgresServer{Host: host, Port: port}, nil
}
