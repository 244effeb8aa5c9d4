package queries

import (
	"context"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

//go:generate mockgen -source=order.go -destination=../../../tests/mock/queries/order.go -package=queriesmock
type OrderQueries interface {
	GetByID(ctx context.Context, orderID int64, buyerID uuid.UUID) (*OrderView, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*OrderView, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id int64) (*OrderView, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*OrderView, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

// GetByID hides orders of other buyers behind the same not-found error.
func (q *orderQueriesImpl) GetByID(ctx context.Context, orderID int64, buyerID uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if view.Buyer.ID != buyerID {
		return nil, errs.ErrOrderNotFound
	}
	return view, nil
}

func (q *orderQueriesImpl) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*OrderView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	views, err := q.repo.FindByBuyer(ctx, buyerID, limit, offset)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}
