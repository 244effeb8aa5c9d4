package readstore

import (
	"context"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/infra/repository/converter"
	"gin-checkout-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	orderViewSelect = `
		SELECT ` + converter.OrderColumns + `, u.name, u.email, p.name
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		JOIN products p ON p.id = o.product_id`

	findOrderViewByID = orderViewSelect + ` WHERE o.id = $1`

	findOrderViewsByBuyer = orderViewSelect + `
		WHERE o.buyer_id = $1
		ORDER BY o.id DESC
		LIMIT $2 OFFSET $3`
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id int64) (*queries.OrderView, error) {
	view, err := scanOrderView(r.db.QueryRow(ctx, findOrderViewByID, id))
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	return view, nil
}

func (r *OrderReadStore) FindByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*queries.OrderView, error) {
	rows, err := r.db.Query(ctx, findOrderViewsByBuyer, buyerID, limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	views := make([]*queries.OrderView, 0, limit)
	for rows.Next() {
		view, err := scanOrderView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan order", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate orders", err)
	}
	return views, nil
}

func scanOrderView(row pgx.Row) (*queries.OrderView, error) {
	var buyerName, buyerEmail, productName string
	o, err := converter.ScanOrder(row, &buyerName, &buyerEmail, &productName)
	if err != nil {
		return nil, err
	}
	buyer := user.Buyer{ID: o.BuyerID(), Name: buyerName, Email: buyerEmail}
	return queries.NewOrderView(o, buyer, productName), nil
}
