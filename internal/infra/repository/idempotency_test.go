//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/usecase/shared"
	"gin-checkout-core/tests/common/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepository_TryInsert(t *testing.T) {
	buyerID := uuid.New()
	expiresAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		affected int
		want     bool
	}{
		{name: "新規キーは挿入される", affected: 1, want: true},
		{name: "既存キーは挿入されない", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(dbtest.MockDB)
			mockDB.On("Exec", mock.Anything, tryInsertIdempotencyKey,
				[]any{"order-key-0001", buyerID, "hash", shared.IdempotencyStatusProcessing, expiresAt}).
				Return(dbtest.Tag("INSERT 0", tt.affected), nil)

			inserted, err := NewIdempotencyRepository(mockDB).TryInsert(context.Background(), "order-key-0001", buyerID, "hash", expiresAt)

			require.NoError(t, err)
			assert.Equal(t, tt.want, inserted)
			mockDB.AssertExpectations(t)
		})
	}
}

func TestIdempotencyRepository_Complete(t *testing.T) {
	t.Run("キーが無ければNOT_FOUND", func(t *testing.T) {
		mockDB := new(dbtest.MockDB)
		mockDB.On("Exec", mock.Anything, completeIdempotencyKey, mock.Anything).Return(dbtest.Tag("UPDATE", 0), nil)

		err := NewIdempotencyRepository(mockDB).Complete(context.Background(), "order-key-0001", uuid.New(), 3)

		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("DBエラーはDB_FAILURE", func(t *testing.T) {
		mockDB := new(dbtest.MockDB)
		mockDB.On("Exec", mock.Anything, completeIdempotencyKey, mock.Anything).Return(dbtest.Tag("UPDATE", 0), assert.AnError)

		err := NewIdempotencyRepository(mockDB).Complete(context.Background(), "order-key-0001", uuid.New(), 3)

		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}
