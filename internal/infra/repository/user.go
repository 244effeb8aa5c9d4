package repository

import (
	"context"
	"time"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/db"

	"github.com/google/uuid"
)

const updateUserLastLogin = `UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1`

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(db db.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, updateUserLastLogin, userID, at)
	if err != nil {
		return infra.WrapRepoErr("failed to update user last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}
