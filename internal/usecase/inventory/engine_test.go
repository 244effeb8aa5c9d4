//go:build unit

package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/memory"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/telemetry"
	"gin-checkout-core/internal/usecase/inventory"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// stubCatalog keeps one product in memory. casFailures forces that many
// compare-and-set calls to lose, as if another writer got there first.
type stubCatalog struct {
	stock       map[int64]int
	version     int64
	casFailures int
	casCalls    int
	dbErr       error
}

func (s *stubCatalog) DecrementIfAvailable(_ context.Context, productID int64, quantity int) (int, bool, error) {
	if s.dbErr != nil {
		return 0, false, s.dbErr
	}
	stock, ok := s.stock[productID]
	if !ok || stock < quantity {
		return 0, false, nil
	}
	s.stock[productID] = stock - quantity
	return stock - quantity, true, nil
}

func (s *stubCatalog) StockVersion(_ context.Context, productID int64) (int, int64, error) {
	if s.dbErr != nil {
		return 0, 0, s.dbErr
	}
	stock, ok := s.stock[productID]
	if !ok {
		return 0, 0, infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return stock, s.version, nil
}

func (s *stubCatalog) CompareAndSetStock(_ context.Context, productID int64, expectedVersion int64, newStock int) (bool, error) {
	s.casCalls++
	if s.casFailures > 0 {
		s.casFailures--
		s.version++
		return false, nil
	}
	if expectedVersion != s.version {
		return false, nil
	}
	s.stock[productID] = newStock
	s.version++
	return true, nil
}

func (s *stubCatalog) Exists(_ context.Context, productID int64) (bool, error) {
	_, ok := s.stock[productID]
	return ok, nil
}

type stubTx struct {
	catalog shared.CatalogRepository
}

func (t stubTx) Catalog() shared.CatalogRepository         { return t.catalog }
func (t stubTx) Orders() shared.OrderRepository            { return nil }
func (t stubTx) Idempotency() shared.IdempotencyRepository { return nil }
func (t stubTx) Outbox() shared.OutboxRepository           { return nil }
func (t stubTx) Users() shared.UserRepository              { return nil }
func (t stubTx) Reads() shared.CommandReads                { return nil }

func newEngine(strategy string, maxRetries int) (inventory.Engine, *telemetry.Metrics) {
	m := telemetry.NewMetrics()
	cfg := config.CheckoutConfig{InventoryStrategy: strategy, InventoryCASMaxRetries: maxRetries}
	return inventory.NewEngine(cfg, m), m
}

func TestEngine_Reserve(t *testing.T) {
	for _, strategy := range []string{config.InventoryStrategyAtomic, config.InventoryStrategyCAS} {
		t.Run(strategy, func(t *testing.T) {
			tests := []struct {
				name          string
				stock         map[int64]int
				productID     int64
				quantity      int
				wantErr       error
				wantRemaining int
				wantOutcome   string
			}{
				{name: "reserves part of the stock", stock: map[int64]int{1: 10}, productID: 1, quantity: 3, wantRemaining: 7, wantOutcome: "reserved"},
				{name: "reserves the last units", stock: map[int64]int{1: 2}, productID: 1, quantity: 2, wantRemaining: 0, wantOutcome: "reserved"},
				{name: "refuses more than available", stock: map[int64]int{1: 2}, productID: 1, quantity: 3, wantErr: errs.ErrInsufficientStock, wantOutcome: "insufficient_stock"},
				{name: "refuses an empty shelf", stock: map[int64]int{1: 0}, productID: 1, quantity: 1, wantErr: errs.ErrInsufficientStock, wantOutcome: "insufficient_stock"},
				{name: "unknown product", stock: map[int64]int{}, productID: 99, quantity: 1, wantErr: errs.ErrProductNotFound, wantOutcome: "not_found"},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					engine, m := newEngine(strategy, 5)
					catalog := &stubCatalog{stock: tt.stock, version: 1}
					before := catalog.stock[tt.productID]

					res, err := engine.Reserve(context.Background(), stubTx{catalog: catalog}, tt.productID, tt.quantity)

					if tt.wantErr != nil {
						require.Error(t, err)
						assert.True(t, errs.Is(err, tt.wantErr), "got %v", err)
						assert.Nil(t, res)
						assert.Equal(t, before, catalog.stock[tt.productID], "stock must not move on refusal")
					} else {
						require.NoError(t, err)
						assert.Equal(t, tt.wantRemaining, res.RemainingStock)
						assert.Equal(t, tt.wantRemaining, catalog.stock[tt.productID])
					}
					assert.InDelta(t, 1, testutil.ToFloat64(m.ReservationResults.WithLabelValues(strategy, tt.wantOutcome)), 0)
				})
			}
		})
	}
}

func TestEngine_RejectsNonPositiveQuantity(t *testing.T) {
	engine, _ := newEngine(config.InventoryStrategyAtomic, 5)
	catalog := &stubCatalog{stock: map[int64]int{1: 5}, version: 1}

	for _, q := range []int{0, -1} {
		_, err := engine.Reserve(context.Background(), stubTx{catalog: catalog}, 1, q)
		assert.True(t, errs.Is(err, errs.ErrInvalidQuantity))
	}
	assert.Equal(t, 5, catalog.stock[1])
}

func TestEngine_CAS(t *testing.T) {
	t.Run("retries after a lost race", func(t *testing.T) {
		engine, _ := newEngine(config.InventoryStrategyCAS, 5)
		catalog := &stubCatalog{stock: map[int64]int{1: 5}, version: 1, casFailures: 2}

		res, err := engine.Reserve(context.Background(), stubTx{catalog: catalog}, 1, 1)

		require.NoError(t, err)
		assert.Equal(t, 4, res.RemainingStock)
		assert.Equal(t, 3, catalog.casCalls)
	})

	t.Run("gives up with a conflict once retries are spent", func(t *testing.T) {
		engine, m := newEngine(config.InventoryStrategyCAS, 3)
		catalog := &stubCatalog{stock: map[int64]int{1: 5}, version: 1, casFailures: 100}

		_, err := engine.Reserve(context.Background(), stubTx{catalog: catalog}, 1, 1)

		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrReservationConflict))
		assert.False(t, errs.Is(err, errs.ErrInsufficientStock))
		assert.Equal(t, 3, catalog.casCalls)
		assert.Equal(t, 5, catalog.stock[1])
		assert.InDelta(t, 1, testutil.ToFloat64(m.ReservationResults.WithLabelValues("cas", "conflict")), 0)
	})

	t.Run("zero retries still makes one attempt", func(t *testing.T) {
		engine, _ := newEngine(config.InventoryStrategyCAS, 0)
		catalog := &stubCatalog{stock: map[int64]int{1: 5}, version: 1}

		_, err := engine.Reserve(context.Background(), stubTx{catalog: catalog}, 1, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, catalog.casCalls)
	})
}

func TestEngine_StorageFailure(t *testing.T) {
	for _, strategy := range []string{config.InventoryStrategyAtomic, config.InventoryStrategyCAS} {
		t.Run(strategy, func(t *testing.T) {
			engine, m := newEngine(strategy, 5)
			catalog := &stubCatalog{stock: map[int64]int{1: 5}, dbErr: errors.New("connection reset")}

			_, err := engine.Reserve(context.Background(), stubTx{catalog: catalog}, 1, 1)

			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrDatabaseOperationFailed))
			assert.InDelta(t, 1, testutil.ToFloat64(m.ReservationResults.WithLabelValues(strategy, "error")), 0)
		})
	}
}

// Many buyers race for a short shelf; exactly the available units are sold.
func TestEngine_ConcurrentReservationsNeverOversell(t *testing.T) {
	for _, strategy := range []string{config.InventoryStrategyAtomic, config.InventoryStrategyCAS} {
		t.Run(strategy, func(t *testing.T) {
			store := memory.NewStore()
			productID := store.SeedProduct("Cabo USB-C", decimal.RequireFromString("29.90"), decimal.Zero, 7)
			engine, _ := newEngine(strategy, 5)

			var (
				mu       sync.Mutex
				reserved int
				refused  int
			)
			var g errgroup.Group
			for range 20 {
				g.Go(func() error {
					err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
						_, err := engine.Reserve(ctx, tx, productID, 1)
						return err
					})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						reserved++
					case errs.Is(err, errs.ErrInsufficientStock):
						refused++
					default:
						return err
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			assert.Equal(t, 7, reserved)
			assert.Equal(t, 13, refused)
			assert.Equal(t, 0, store.Stock(productID))
		})
	}
}
