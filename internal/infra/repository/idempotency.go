package repository

import (
	"context"
	"time"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	tryInsertIdempotencyKey = `
		INSERT INTO idempotency_keys (key, buyer_id, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key, buyer_id) DO NOTHING`

	completeIdempotencyKey = `
		UPDATE idempotency_keys
		SET status = $3, order_id = $4, updated_at = now()
		WHERE key = $1 AND buyer_id = $2`

	claimExpiredIdempotencyKey = `
		UPDATE idempotency_keys
		SET request_hash = $3, status = $4, order_id = NULL, expires_at = $6, updated_at = now()
		WHERE key = $1 AND buyer_id = $2 AND expires_at < $5`
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(db db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// TryInsert blocks behind a concurrent uncommitted insert of the same key and
// reports false once that insert commits.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key string, buyerID uuid.UUID, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, tryInsertIdempotencyKey, key, buyerID, requestHash, shared.IdempotencyStatusProcessing, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key string, buyerID uuid.UUID, orderID int64) error {
	tag, err := r.db.Exec(ctx, completeIdempotencyKey, key, buyerID, shared.IdempotencyStatusCompleted, orderID)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, key string, buyerID uuid.UUID, requestHash string, now, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, claimExpiredIdempotencyKey, key, buyerID, requestHash, shared.IdempotencyStatusProcessing, now, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}
