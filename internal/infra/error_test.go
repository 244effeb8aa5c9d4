//go:build unit

package infra_test

import (
	"errors"
	"testing"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr(t *testing.T) {
	cause := errors.New("connection reset")

	t.Run("defaults to DB_FAILURE and keeps the cause", func(t *testing.T) {
		err := infra.WrapRepoErr("failed to create order", cause)

		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "DB_FAILURE: failed to create order: connection reset", err.Error())
	})

	t.Run("kind without cause", func(t *testing.T) {
		err := infra.WrapRepoErr("order not found", nil, infra.KindNotFound)

		assert.True(t, infra.IsKind(err, infra.KindNotFound))
		assert.False(t, infra.IsKind(err, infra.KindDBFailure))
		assert.Equal(t, "NOT_FOUND: order not found", err.Error())
	})

	t.Run("kind survives use case wrapping", func(t *testing.T) {
		err := errs.Mark(errs.Wrap(infra.WrapRepoErr("stale", nil, infra.KindConflict), "confirm"), errs.ErrDatabaseOperationFailed)

		assert.True(t, infra.IsKind(err, infra.KindConflict))
		assert.True(t, errs.Is(err, errs.ErrDatabaseOperationFailed))
	})

	t.Run("plain errors have no kind", func(t *testing.T) {
		assert.False(t, infra.IsKind(cause, infra.KindDBFailure))
		assert.False(t, infra.IsKind(nil, infra.KindNotFound))
	})
}
