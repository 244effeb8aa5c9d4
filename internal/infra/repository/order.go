package repository

import (
	"context"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/infra/repository/converter"
	"gin-checkout-core/internal/pkg/pgconv"
)

// The id comes from the identity column; it is never derived from existing rows.
const (
	insertOrder = `
		INSERT INTO orders AS o (
			buyer_id, product_id, quantity, unit_price, total,
			payment_method, payment_status,
			deferred_token, deferred_expires_at, confirmation_ref,
			card_last4, card_brand, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + converter.OrderColumns

	updateOrderStatusIfCurrent = `
		UPDATE orders
		SET payment_status = $3, updated_at = $4
		WHERE id = $1 AND payment_status = $2`

	orderExists = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	created, err := converter.ScanOrder(r.db.QueryRow(ctx, insertOrder, converter.OrderInsertArgs(o)...))
	if err != nil {
		switch {
		case pgconv.IsUniqueViolation(err):
			return nil, infra.WrapRepoErr("duplicate deferred token", err, infra.KindDuplicateKey)
		case pgconv.IsForeignKeyViolation(err):
			return nil, infra.WrapRepoErr("order references unknown product or buyer", err, infra.KindForeignKeyViolated)
		default:
			return nil, infra.WrapRepoErr("failed to create order", err)
		}
	}
	return created, nil
}

// UpdateStatusIfCurrent is the only status write. Zero affected rows means
// either the order is gone or someone else already moved it.
func (r *OrderRepository) UpdateStatusIfCurrent(ctx context.Context, orderID int64, expected, next order.PaymentStatus, at time.Time) error {
	tag, err := r.db.Exec(ctx, updateOrderStatusIfCurrent, orderID, expected.String(), next.String(), at)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, orderExists, orderID).Scan(&exists); err != nil {
		return infra.WrapRepoErr("failed to check order existence", err)
	}
	if !exists {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return infra.WrapRepoErr("order status is no longer "+expected.String(), nil, infra.KindConflict)
}
