//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/tests/common/builder"
	"gin-checkout-core/tests/common/dbtest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_UpdateStatusIfCurrent(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		affected int
		exists   bool
		wantKind infra.RepositoryErrorKind
	}{
		{name: "期待ステータスと一致すれば更新する", affected: 1},
		{name: "ステータスが変わっていればCONFLICT", affected: 0, exists: true, wantKind: infra.KindConflict},
		{name: "注文が無ければNOT_FOUND", affected: 0, exists: false, wantKind: infra.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(dbtest.MockDB)
			mockDB.On("Exec", mock.Anything, updateOrderStatusIfCurrent, []any{int64(10), "pending", "approved", at}).
				Return(dbtest.Tag("UPDATE", tt.affected), nil)
			if tt.affected == 0 {
				mockDB.On("QueryRow", mock.Anything, orderExists, []any{int64(10)}).
					Return(dbtest.Row{Values: []any{tt.exists}})
			}

			err := NewOrderRepository(mockDB).UpdateStatusIfCurrent(context.Background(), 10, order.StatusPending, order.StatusApproved, at)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				assert.NoError(t, err)
			}
			mockDB.AssertExpectations(t)
		})
	}
}

func TestOrderRepository_Create(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "トークン重複はDUPLICATE_KEY", err: &pgconn.PgError{Code: "23505"}, wantKind: infra.KindDuplicateKey},
		{name: "外部キー違反はFOREIGN_KEY_VIOLATED", err: &pgconn.PgError{Code: "23503"}, wantKind: infra.KindForeignKeyViolated},
		{name: "その他はDB_FAILURE", err: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(dbtest.MockDB)
			mockDB.On("QueryRow", mock.Anything, insertOrder, mock.Anything).Return(dbtest.Row{Err: tt.err})

			_, err := NewOrderRepository(mockDB).Create(context.Background(), newTestOrder(t))

			require.Error(t, err)
			assert.True(t, infra.IsKind(err, tt.wantKind))
		})
	}
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	return builder.NewOrderBuilder().AsDeferred().BuildDomain()
}
