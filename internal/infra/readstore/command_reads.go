package readstore

import (
	"context"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/infra/repository/converter"
	"gin-checkout-core/internal/pkg/pgconv"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	findProductByID = `SELECT ` + converter.ProductColumns + ` FROM products p WHERE p.id = $1`

	findOrderByID = `SELECT ` + converter.OrderColumns + ` FROM orders o WHERE o.id = $1`

	findOrderByDeferredToken = `SELECT ` + converter.OrderColumns + ` FROM orders o WHERE o.deferred_token = $1`

	findUserByID = `SELECT ` + converter.UserColumns + ` FROM users u WHERE u.id = $1`

	findUserByEmail = `SELECT ` + converter.UserColumns + ` FROM users u WHERE u.email = $1`

	findIdempotencyKey = `
		SELECT key, buyer_id, status, request_hash, order_id, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND buyer_id = $2`
)

// CommandReads loads aggregates for the write side. Inside a unit of work it
// runs on the transaction, so reads observe that transaction's writes.
type CommandReads struct {
	db db.DBTX
}

func NewCommandReads(db db.DBTX) *CommandReads {
	return &CommandReads{db: db}
}

func (r *CommandReads) ProductByID(ctx context.Context, id int64) (*product.Product, error) {
	p, err := converter.ScanProduct(r.db.QueryRow(ctx, findProductByID, id))
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return p, nil
}

func (r *CommandReads) OrderByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := converter.ScanOrder(r.db.QueryRow(ctx, findOrderByID, id))
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	return o, nil
}

func (r *CommandReads) OrderByDeferredToken(ctx context.Context, token string) (*order.Order, error) {
	o, err := converter.ScanOrder(r.db.QueryRow(ctx, findOrderByDeferredToken, token))
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	return o, nil
}

func (r *CommandReads) UserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := converter.ScanUser(r.db.QueryRow(ctx, findUserByID, id))
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return u, nil
}

func (r *CommandReads) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := converter.ScanUser(r.db.QueryRow(ctx, findUserByEmail, email))
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return u, nil
}

func (r *CommandReads) IdempotencyByKey(ctx context.Context, key string, buyerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec     shared.IdempotencyRecord
		orderID pgtype.Int8
	)
	err := r.db.QueryRow(ctx, findIdempotencyKey, key, buyerID).
		Scan(&rec.Key, &rec.BuyerID, &rec.Status, &rec.RequestHash, &orderID, &rec.ExpiresAt)
	if err != nil {
		return nil, notFoundOr(err, "idempotency key")
	}
	rec.OrderID = pgconv.Int8PtrFromPgtype(orderID)
	return &rec, nil
}

func notFoundOr(err error, what string) error {
	if pgconv.IsNoRows(err) {
		return infra.WrapRepoErr(what+" not found", err, infra.KindNotFound)
	}
	return infra.WrapRepoErr("failed to find "+what, err)
}
