package repository

import (
	"context"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/pkg/pgconv"
)

const (
	decrementStockIfAvailable = `
		UPDATE products
		SET stock = stock - $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`

	selectStockVersion = `SELECT stock, version FROM products WHERE id = $1`

	compareAndSetStock = `
		UPDATE products
		SET stock = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND $3 >= 0`

	productExists = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
)

type CatalogRepository struct {
	db db.DBTX
}

func NewCatalogRepository(db db.DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// DecrementIfAvailable is the atomic check-and-decrement. A concurrent writer on
// the same row blocks this statement until it commits, then the WHERE clause is
// evaluated against the new stock.
func (r *CatalogRepository) DecrementIfAvailable(ctx context.Context, productID int64, quantity int) (int, bool, error) {
	var remaining int32
	err := r.db.QueryRow(ctx, decrementStockIfAvailable, productID, quantity).Scan(&remaining)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, infra.WrapRepoErr("failed to decrement stock", err)
	}
	return int(remaining), true, nil
}

func (r *CatalogRepository) StockVersion(ctx context.Context, productID int64) (int, int64, error) {
	var (
		stock   int32
		version int64
	)
	err := r.db.QueryRow(ctx, selectStockVersion, productID).Scan(&stock, &version)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, 0, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return 0, 0, infra.WrapRepoErr("failed to read stock version", err)
	}
	return int(stock), version, nil
}

func (r *CatalogRepository) CompareAndSetStock(ctx context.Context, productID int64, expectedVersion int64, newStock int) (bool, error) {
	tag, err := r.db.Exec(ctx, compareAndSetStock, productID, expectedVersion, newStock)
	if err != nil {
		return false, infra.WrapRepoErr("failed to compare-and-set stock", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CatalogRepository) Exists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, productExists, productID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check product existence", err)
	}
	return exists, nil
}
