package readstore

import (
	"context"

	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/infra/repository/converter"
	"gin-checkout-core/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(db db.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	u, err := converter.ScanUser(r.db.QueryRow(ctx, findUserByID, id))
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &queries.AuthorizedUserView{
		ID:       u.ID(),
		Name:     u.Name(),
		Email:    u.Email().Value(),
		Role:     u.Role().String(),
		IsActive: u.IsActive(),
	}, nil
}
